// internal/settings/service.go
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"devboard/internal/database"
	custom_errors "devboard/internal/errors"
	"devboard/internal/model"
)

// Store is the persistence the settings service depends on.
type Store interface {
	GetUserSettings(ctx context.Context, userID string) (database.UserSetting, error)
	UpsertUserSettings(ctx context.Context, arg database.UpsertUserSettingsParams) (database.UserSetting, error)
}

// WeatherPatch is a partial settings update; nil fields keep their stored value.
type WeatherPatch struct {
	City  *string      `json:"weatherCity"`
	Units *model.Units `json:"weatherUnits"`
}

// Service reads and writes per-user settings.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Weather returns the user's weather settings, or the defaults when none were saved.
func (s *Service) Weather(ctx context.Context, userID string) (*model.WeatherSettings, error) {
	row, err := s.store.GetUserSettings(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return &model.WeatherSettings{Units: model.UnitsMetric}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return toModel(row), nil
}

// UpdateWeather upserts the user's weather settings.
func (s *Service) UpdateWeather(ctx context.Context, userID string, p WeatherPatch) (*model.WeatherSettings, error) {
	params := database.UpsertUserSettingsParams{UserID: userID}
	if p.Units != nil {
		if !p.Units.Valid() {
			return nil, custom_errors.NewValidationError("weatherUnits", "Invalid units")
		}
		units := string(*p.Units)
		params.WeatherUnits = &units
	}
	if p.City != nil {
		city := strings.TrimSpace(*p.City)
		params.WeatherCity = &city
	}

	row, err := s.store.UpsertUserSettings(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("upsert settings: %w", err)
	}
	return toModel(row), nil
}

func toModel(row database.UserSetting) *model.WeatherSettings {
	return &model.WeatherSettings{
		City:  row.WeatherCity,
		Units: model.Units(row.WeatherUnits),
	}
}
