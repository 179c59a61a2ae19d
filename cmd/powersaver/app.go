package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/powersaver/pkg/config"
	"github.com/charlie0129/powersaver/pkg/health"
	"github.com/charlie0129/powersaver/pkg/monitor"
	"github.com/charlie0129/powersaver/pkg/persistence"
	"github.com/charlie0129/powersaver/pkg/powerinfo"
)

// app is the monitor together with what has to be released after use.
type app struct {
	monitor *monitor.Monitor
	store   persistence.Gateway
	closers []func() error
}

func openStore(c config.Config) (persistence.Gateway, func() error, error) {
	switch c.Store() {
	case config.StoreSQLite:
		db, err := persistence.OpenSQLite(c.StatePath())
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case config.StoreFile:
		return persistence.NewFile(c.StatePath()), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", c.Store())
	}
}

func newSampler() powerinfo.Sampler {
	if simulate {
		return powerinfo.NewDefaultSimulatedSampler()
	}
	return &powerinfo.FallbackSampler{
		Primary:  powerinfo.NewSystemSampler(),
		Fallback: powerinfo.NewDefaultSimulatedSampler(),
	}
}

// newApp wires the monitor. A non-nil forcedHealth pins the battery health
// percentage.
func newApp(c config.Config, forcedHealth *int) (*app, error) {
	store, closeStore, err := openStore(c)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %v", err)
	}

	estimator := &health.Estimator{}
	if !simulate {
		estimator.Source = health.NewSystemSource()
	}

	a := &app{store: store}
	if closeStore != nil {
		a.closers = append(a.closers, closeStore)
	}
	a.monitor = monitor.New(monitor.Options{
		Sampler:                newSampler(),
		Persistence:            store,
		Estimator:              estimator,
		DesignCapacityMAh:      c.DesignCapacityMAh(),
		ForcedHealthPercentage: forcedHealth,
	})

	return a, nil
}

func (a *app) Close() {
	a.monitor.Close()
	for _, c := range a.closers {
		if err := c(); err != nil {
			logrus.WithError(err).Warn("failed to close state store")
		}
	}
}
