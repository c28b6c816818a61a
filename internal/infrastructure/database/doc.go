// Package database provides the device's SQLite store.
//
// It owns the connection (WAL mode, busy timeout, a single writer
// connection, 0600 file permissions) and the schema migrations. The
// schema holds the admin access tokens and the provisioned WiFi
// credentials; see the SQL files in the migrations package.
//
// Usage:
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migrations are additive. New columns are NULLABLE or have a DEFAULT,
// and every .up.sql ships with a .down.sql.
package database
