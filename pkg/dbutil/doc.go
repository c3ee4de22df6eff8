/*
Package dbutil captures database queries as self-describing records.

Query and Exec run against anything satisfying the Querier subset of
database/sql (both *sql.DB and *sql.Tx do) and return a record carrying the
query text, timing, column names and all rows. Records marshal cleanly with
pkg/jsonutil for audit logs and debugging dumps.

	result, err := dbutil.Query(ctx, db, "SELECT id, name FROM users WHERE active = ?", true)
	if err != nil {
		return err
	}
	log.Printf("%d rows in %v", result.RowCount, result.Duration)
*/
package dbutil
