package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/eventmetrix/internal/persistence"
)

// TeamStore exposes the custom team collection.
type TeamStore interface {
	ListCustomTeams(ctx context.Context) ([]persistence.Team, error)
	SaveCustomTeam(ctx context.Context, team persistence.Team) error
}

// TeamService merges the predefined team catalog with user-submitted custom
// teams into one addressable namespace.
type TeamService struct {
	teams       TeamStore
	idGenerator func() string
	logger      *slog.Logger
}

// NewTeamService wires dependencies for the team service.
func NewTeamService(teams TeamStore, idGenerator func() string) *TeamService {
	return NewTeamServiceWithLogger(teams, idGenerator, nil)
}

// NewTeamServiceWithLogger constructs a team service with a specified logger.
func NewTeamServiceWithLogger(teams TeamStore, idGenerator func() string, logger *slog.Logger) *TeamService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &TeamService{teams: teams, idGenerator: idGenerator, logger: defaultLogger(logger)}
}

func (s *TeamService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TeamService", operation, attrs...)
}

// AllTeams returns the predefined catalog followed by custom teams in
// insertion order.
func (s *TeamService) AllTeams(ctx context.Context) ([]persistence.Team, error) {
	if s == nil || s.teams == nil {
		return nil, fmt.Errorf("team store not configured")
	}

	custom, err := s.teams.ListCustomTeams(ctx)
	if err != nil {
		return nil, err
	}

	predefined := persistence.PredefinedTeams()
	all := make([]persistence.Team, 0, len(predefined)+len(custom))
	all = append(all, predefined...)
	all = append(all, custom...)
	return all, nil
}

// CreateCustomTeam persists a user-submitted team. Region defaults to
// "Global". Generated ids must not collide with predefined or existing
// custom ids.
func (s *TeamService) CreateCustomTeam(ctx context.Context, name, region string) (team persistence.Team, err error) {
	if s == nil || s.teams == nil {
		err = fmt.Errorf("team store not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateCustomTeam", "name", name)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create custom team", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("team_id", team.ID).InfoContext(ctx, "custom team created")
	}()

	name = strings.TrimSpace(name)
	if name == "" {
		err = &ValidationError{FieldErrors: map[string]string{"name": "name is required"}}
		return
	}
	region = strings.TrimSpace(region)
	if region == "" {
		region = "Global"
	}

	existing, listErr := s.AllTeams(ctx)
	if listErr != nil {
		err = listErr
		return
	}
	taken := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		taken[t.ID] = struct{}{}
	}

	var id string
	for attempt := 0; attempt < 3; attempt++ {
		candidate := s.idGenerator()
		if _, collides := taken[candidate]; !collides && candidate != "" {
			id = candidate
			break
		}
	}
	if id == "" {
		err = fmt.Errorf("could not generate a collision-free team id")
		return
	}

	team = persistence.Team{ID: id, Name: name, Region: region}
	if err = s.teams.SaveCustomTeam(ctx, team); err != nil {
		team = persistence.Team{}
		return
	}
	return
}
