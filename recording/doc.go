// Package recording drives an audio capture device through a small state
// machine: idle, recording, paused, stopped and error.
//
// A Controller owns at most one capture run. While recording it buffers
// chunks from the device stream, samples the input level for a meter and
// counts elapsed seconds. Pausing freezes the counter; resuming continues
// from the kept value. Stop returns every captured chunk as one Artifact.
//
//	ctrl := recording.NewController(dev, recording.Callbacks{
//	    OnLevelUpdate: func(level float64) { ... },
//	    OnComplete:    func(a recording.Artifact, seconds int) { ... },
//	})
//	defer ctrl.Close()
//
//	if derr := ctrl.Start(ctx); derr != nil {
//	    return derr
//	}
//
// Callbacks run on controller goroutines and must not call Pause, Stop,
// Cancel or Close synchronously.
package recording
