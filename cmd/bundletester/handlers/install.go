package handlers

import (
	"context"

	"github.com/imamik/bundletester/internal/packages"
)

// Install handles the install command: add configured package sources, then
// install configured packages.
func Install(ctx context.Context, opts Options, noUpdate bool) error {
	s, err := newSession(opts)
	if err != nil {
		return err
	}
	defer s.finish()

	inst := packages.NewInstaller(s.cfg, packages.Options{
		Runner:  s.runner,
		DryRun:  s.run.DryRun,
		Logger:  s.log,
		Metrics: s.metrics,
	})
	if err := inst.AddSources(ctx, !noUpdate); err != nil {
		return err
	}
	return inst.InstallPackages(ctx)
}
