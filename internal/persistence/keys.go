package persistence

// Storage keys for each collection blob. These are stable external state:
// they match the key names the original browser profile wrote.
const (
	KeyUsers    = "eventmetrix-users"
	KeyEvents   = "eventmetrix-events"
	KeyMetrics  = "eventmetrix-metrics"
	KeySession  = "eventmetrix-session"
	KeyTeams    = "eventmetrix-teams"
	KeyLanguage = "eventmetrix-language"
)

// PredefinedTeams returns the built-in team catalog in presentation order.
// The trailing "other" entry is the catch-all selection.
func PredefinedTeams() []Team {
	return []Team{
		{ID: "1", Name: "Ethereum Foundation", Region: "Global"},
		{ID: "2", Name: "Polygon Labs", Region: "Global"},
		{ID: "3", Name: "Chainlink", Region: "Global"},
		{ID: "4", Name: "Binance", Region: "Global"},
		{ID: "5", Name: "Solana Foundation", Region: "Global"},
		{ID: "6", Name: "Avalanche", Region: "Global"},
		{ID: "7", Name: "Near Protocol", Region: "Global"},
		{ID: "8", Name: "Cosmos", Region: "Global"},
		{ID: "other", Name: "Other", Region: "Global"},
	}
}

// Countries returns the selectable country catalog with localized names.
func Countries() []Country {
	return []Country{
		{Code: "AR", NameEn: "Argentina", NameEs: "Argentina"},
		{Code: "BR", NameEn: "Brazil", NameEs: "Brasil"},
		{Code: "CL", NameEn: "Chile", NameEs: "Chile"},
		{Code: "CO", NameEn: "Colombia", NameEs: "Colombia"},
		{Code: "MX", NameEn: "Mexico", NameEs: "México"},
		{Code: "PE", NameEn: "Peru", NameEs: "Perú"},
		{Code: "ES", NameEn: "Spain", NameEs: "España"},
		{Code: "US", NameEn: "United States", NameEs: "Estados Unidos"},
		{Code: "GB", NameEn: "United Kingdom", NameEs: "Reino Unido"},
		{Code: "DE", NameEn: "Germany", NameEs: "Alemania"},
		{Code: "FR", NameEn: "France", NameEs: "Francia"},
		{Code: "IT", NameEn: "Italy", NameEs: "Italia"},
	}
}

// Country is a selectable country catalog entry.
type Country struct {
	Code   string `json:"code"`
	NameEn string `json:"nameEn"`
	NameEs string `json:"nameEs"`
}
