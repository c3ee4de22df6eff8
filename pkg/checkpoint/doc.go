/*
Package checkpoint persists run progress between process restarts.

A Store keeps two things: the timestamp of the last completed run, and a
per-key timestamp memory for jobs tracking many independent cursors. Loads
never fail on missing or corrupt state; LastRun defaults to now and Memory
to an empty map, so the first run of a fresh deployment behaves sensibly.

FileStore writes a primary and a backup JSON file on every save and falls
back to the backup on load, protecting the checkpoint from a crash
mid-write:

	store, err := checkpoint.NewFileStore("last_run.json")
	if err != nil {
		log.Fatal(err)
	}

	since, _ := store.LastRun(ctx)
	process(since)
	_ = store.SetLastRun(ctx, time.Now())

RedisStore implements the same interface on a Redis client for jobs whose
workers move between hosts.
*/
package checkpoint
