/*
Package schedule repeats jobs on intervals, cron expressions, or single
points in time.

	r := schedule.New()
	_ = r.Every("sync", 5*time.Minute, func(ctx context.Context) {
		syncOnce(ctx)
	})
	_ = r.Cron("nightly", "0 3 * * *", func(ctx context.Context) {
		rebuild(ctx)
	})

	if err := r.Start(); err != nil {
		log.Fatal(err)
	}
	defer r.Stop()

Jobs run on their own goroutines so a slow job never delays another. Stop
cancels the context passed to jobs and waits for in-flight runs to finish.
Cron expressions use the standard five-field format.
*/
package schedule
