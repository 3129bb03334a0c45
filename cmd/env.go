package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sells-group/lead-verify/internal/adapter"
	"github.com/sells-group/lead-verify/internal/config"
	"github.com/sells-group/lead-verify/internal/integration"
	"github.com/sells-group/lead-verify/internal/verify"
)

// verifyEnv holds the wired verification stack shared by the commands.
type verifyEnv struct {
	Registry *prometheus.Registry
	Manager  *integration.Manager
}

// initEnv builds the orchestrator and a manager with the api and notion
// adapters registered. Options override the configured batch settings.
func initEnv(c *config.Config, opts ...integration.Option) *verifyEnv {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	orch := verify.FromConfig(c, verify.NewMetrics(reg))

	base := []integration.Option{
		integration.WithWorkers(c.Batch.MaxConcurrentLeads),
		integration.WithBatchPolicy(integration.BatchPolicy(c.Batch.Policy)),
	}
	mgr := integration.NewManager(orch, append(base, opts...)...)
	mgr.RegisterAdapter(adapter.NewJSONAdapter())
	mgr.RegisterAdapter(adapter.NewNotionAdapter())

	return &verifyEnv{Registry: reg, Manager: mgr}
}
