// Package simulation runs a table of agents around a ring of shared resources.
//
// The Controller builds N resources and N agents, wiring agent i to
// resource (i+1) mod N as its left hand and resource i as its right hand, so
// every resource is shared by two neighbours and the dependencies close into
// a cycle. Start launches the agents in a staggered order, lets them run for
// the configured number of time units, raises every stop flag and waits a
// bounded time for them to finish.
//
// Usage:
//
//	ctrl, err := simulation.New(simulation.Config{Agents: 5, Duration: 2000, Seed: 100})
//	if err != nil {
//	    return err
//	}
//	result, err := ctrl.Start(ctx)
//	if err != nil {
//	    return err
//	}
//	report.WriteTable(os.Stdout, report.BuildRows(result.Stats))
package simulation
