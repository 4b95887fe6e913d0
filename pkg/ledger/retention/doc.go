// Package retention prunes old session ledger records on a cron schedule.
//
// # Basic usage
//
//	pruner := retention.NewPruner(storage, &retention.Config{
//	    RetentionDays: 30,
//	    PruneSchedule: "0 3 * * *",
//	})
//	if err := pruner.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer pruner.Stop()
package retention
