package renderer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/df07/go-progressive-raytracer/pkg/core"
	"github.com/df07/go-progressive-raytracer/pkg/integrator"
	"github.com/df07/go-progressive-raytracer/pkg/lights"
	"github.com/df07/go-progressive-raytracer/pkg/scene"
)

func emptyScene(t *testing.T, resX, resY int) *scene.Scene {
	t.Helper()
	sensor := lights.NewPinholeSensor(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), 0.7, resX, resY)
	sc, err := scene.Build([]scene.Primitive{{Sensor: sensor}}, 0, scene.AccelBVH)
	require.NoError(t, err)
	return sc
}

func TestSchedulerRunPassAccumulatesAcrossPersistentWorkers(t *testing.T) {
	sc := emptyScene(t, 4, 4)
	opts := RenderOptions{Width: 4, Height: 4, NumWorkers: 2, MaxPasses: 3, Seed: 7, Parallel: true}
	sched := NewScheduler(sc, func() integrator.Integrator { return integrator.NewPathTracer(4) }, opts, NewNullLogger())

	require.NoError(t, sched.Run(context.Background()))
	require.Equal(t, 4, sched.Film().Width())
	require.Equal(t, 4, sched.Film().Height())
}

func TestSchedulerForcesSingleWorkerWhenNotParallel(t *testing.T) {
	sc := emptyScene(t, 2, 2)
	opts := RenderOptions{Width: 2, Height: 2, NumWorkers: 8, MaxPasses: 1, Parallel: false}
	sched := NewScheduler(sc, func() integrator.Integrator { return integrator.NewPathTracer(2) }, opts, nil)

	require.Equal(t, 1, sched.Options.NumWorkers)
	require.NoError(t, sched.Run(context.Background()))
}
