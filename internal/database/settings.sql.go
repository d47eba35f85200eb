// internal/database/settings.sql.go
package database

import (
	"context"
)

const getUserSettings = `
SELECT user_id, weather_city, weather_units, updated_at
FROM user_settings
WHERE user_id = $1
`

func (q *Queries) GetUserSettings(ctx context.Context, userID string) (UserSetting, error) {
	row := q.db.QueryRow(ctx, getUserSettings, userID)
	var i UserSetting
	err := row.Scan(
		&i.UserID,
		&i.WeatherCity,
		&i.WeatherUnits,
		&i.UpdatedAt,
	)
	return i, err
}

// NULL parameters keep the stored value on update and fall back to the
// column defaults on insert.
const upsertUserSettings = `
INSERT INTO user_settings (user_id, weather_city, weather_units)
VALUES ($1, $2::text, COALESCE($3::text, 'metric'))
ON CONFLICT (user_id) DO UPDATE
SET weather_city = COALESCE($2::text, user_settings.weather_city),
    weather_units = COALESCE($3::text, user_settings.weather_units),
    updated_at = now()
RETURNING user_id, weather_city, weather_units, updated_at
`

type UpsertUserSettingsParams struct {
	UserID       string
	WeatherCity  *string
	WeatherUnits *string
}

func (q *Queries) UpsertUserSettings(ctx context.Context, arg UpsertUserSettingsParams) (UserSetting, error) {
	row := q.db.QueryRow(ctx, upsertUserSettings, arg.UserID, arg.WeatherCity, arg.WeatherUnits)
	var i UserSetting
	err := row.Scan(
		&i.UserID,
		&i.WeatherCity,
		&i.WeatherUnits,
		&i.UpdatedAt,
	)
	return i, err
}
