package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Defaults applied at the read boundary. Stored records may predate any of
// these columns, so missing values are backfilled on every read instead of
// being assumed present in storage.
const (
	DefaultMaintenanceMessage = "Updating our menu for a better experience."
	DefaultRestaurantName     = "Enat Restaurant"
	DefaultRestaurantLocation = "Dubai, UAE"
	DefaultTotalTables        = 17
	DefaultTheme              = "SAVANNA"
	DefaultTableMode          = "WHEEL"
)

// SettingsView is the fully-defaulted settings snapshot handed to callers.
type SettingsView struct {
	IsMaintenanceMode  bool
	MaintenanceMessage string
	RestaurantName     string
	RestaurantLocation string
	RestaurantLogo     string
	TotalTables        int32
	Theme              string
	TableSelectionMode string
	ReceiptPrinterName string
}

// GetSettings reads the singleton row and backfills every missing field with
// its documented default. A missing row yields the all-defaults view.
func (q *Queries) GetSettings(ctx context.Context) (SettingsView, error) {
	var s Settings
	err := q.db.QueryRow(ctx, `
		SELECT is_maintenance_mode, maintenance_message, restaurant_name,
		       restaurant_location, restaurant_logo, total_tables, theme,
		       table_selection_mode, receipt_printer_name, updated_at
		FROM settings WHERE id = 1`).
		Scan(&s.IsMaintenanceMode, &s.MaintenanceMessage, &s.RestaurantName,
			&s.RestaurantLocation, &s.RestaurantLogo, &s.TotalTables, &s.Theme,
			&s.TableSelectionMode, &s.ReceiptPrinterName, &s.UpdatedAt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return SettingsView{}, err
	}
	return applyDefaults(s), nil
}

func applyDefaults(s Settings) SettingsView {
	v := SettingsView{
		IsMaintenanceMode:  false,
		MaintenanceMessage: DefaultMaintenanceMessage,
		RestaurantName:     DefaultRestaurantName,
		RestaurantLocation: DefaultRestaurantLocation,
		RestaurantLogo:     "",
		TotalTables:        DefaultTotalTables,
		Theme:              DefaultTheme,
		TableSelectionMode: DefaultTableMode,
		ReceiptPrinterName: "",
	}
	if s.IsMaintenanceMode.Valid {
		v.IsMaintenanceMode = s.IsMaintenanceMode.Bool
	}
	if s.MaintenanceMessage.Valid {
		v.MaintenanceMessage = s.MaintenanceMessage.String
	}
	if s.RestaurantName.Valid {
		v.RestaurantName = s.RestaurantName.String
	}
	if s.RestaurantLocation.Valid {
		v.RestaurantLocation = s.RestaurantLocation.String
	}
	if s.RestaurantLogo.Valid {
		v.RestaurantLogo = s.RestaurantLogo.String
	}
	if s.TotalTables.Valid {
		v.TotalTables = s.TotalTables.Int32
	}
	if s.Theme.Valid {
		v.Theme = s.Theme.String
	}
	if s.TableSelectionMode.Valid {
		v.TableSelectionMode = s.TableSelectionMode.String
	}
	if s.ReceiptPrinterName.Valid {
		v.ReceiptPrinterName = s.ReceiptPrinterName.String
	}
	return v
}

// UpdateSettingsParams carries a partial update: only Valid fields are
// written, everything else keeps its stored value.
type UpdateSettingsParams struct {
	IsMaintenanceMode  pgtype.Bool
	MaintenanceMessage pgtype.Text
	RestaurantName     pgtype.Text
	RestaurantLocation pgtype.Text
	RestaurantLogo     pgtype.Text
	TotalTables        pgtype.Int4
	Theme              pgtype.Text
	TableSelectionMode pgtype.Text
	ReceiptPrinterName pgtype.Text
}

// UpdateSettings shallow-merges the partial into the singleton row, creating
// it on first write. COALESCE keeps every field the partial omits.
func (q *Queries) UpdateSettings(ctx context.Context, arg UpdateSettingsParams) (SettingsView, error) {
	_, err := q.db.Exec(ctx, `
		INSERT INTO settings (
			id, is_maintenance_mode, maintenance_message, restaurant_name,
			restaurant_location, restaurant_logo, total_tables, theme,
			table_selection_mode, receipt_printer_name
		)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			is_maintenance_mode  = COALESCE(EXCLUDED.is_maintenance_mode, settings.is_maintenance_mode),
			maintenance_message  = COALESCE(EXCLUDED.maintenance_message, settings.maintenance_message),
			restaurant_name      = COALESCE(EXCLUDED.restaurant_name, settings.restaurant_name),
			restaurant_location  = COALESCE(EXCLUDED.restaurant_location, settings.restaurant_location),
			restaurant_logo      = COALESCE(EXCLUDED.restaurant_logo, settings.restaurant_logo),
			total_tables         = COALESCE(EXCLUDED.total_tables, settings.total_tables),
			theme                = COALESCE(EXCLUDED.theme, settings.theme),
			table_selection_mode = COALESCE(EXCLUDED.table_selection_mode, settings.table_selection_mode),
			receipt_printer_name = COALESCE(EXCLUDED.receipt_printer_name, settings.receipt_printer_name),
			updated_at           = now()`,
		arg.IsMaintenanceMode, arg.MaintenanceMessage, arg.RestaurantName,
		arg.RestaurantLocation, arg.RestaurantLogo, arg.TotalTables, arg.Theme,
		arg.TableSelectionMode, arg.ReceiptPrinterName)
	if err != nil {
		return SettingsView{}, err
	}
	return q.GetSettings(ctx)
}

// ToggleMaintenance is a convenience wrapper around a one-field update.
func (q *Queries) ToggleMaintenance(ctx context.Context, on bool) (SettingsView, error) {
	return q.UpdateSettings(ctx, UpdateSettingsParams{
		IsMaintenanceMode: pgtype.Bool{Bool: on, Valid: true},
	})
}
