package conf

// Defaults returns a Settings populated with reference values drawn from
// typical hypoDD/ph2dt tutorials.
func Defaults() *Settings {
	return &Settings{
		WorkDir: "./hdd-work",
		Retain:  false,

		Log: LogSettings{
			MaxSize:  100 * 1024 * 1024,
			Rotation: RotationSize,
		},

		Tools: ToolSettings{
			Ph2dtBinary:    "ph2dt",
			Ph2dtTemplate:  "ph2dt.inp.tpl",
			HypoDDBinary:   "hypoDD",
			HypoDDTemplate: "hypoDD.inp.tpl",
		},

		Waveform: WaveformSettings{
			TargetFrequency: 100.0,
			FilterFreqMin:   1.0,
			FilterFreqMax:   20.0,
			FilterPasses:    2,
			UseDiskCache:    true,
			DiskCacheDir:    "wfcache",
			SNR: SNRSettings{
				Enabled:     true,
				MinSNR:      2.0,
				NoiseStart:  -5.0,
				NoiseEnd:    -1.0,
				SignalStart: -0.1,
				SignalEnd:   0.5,
			},
		},

		Neighbor: NeighborSettings{
			NumEllipsoids:    5,
			MaxEllipsoidSize: 20.0,
			MinNumNeigh:      4,
			MaxNumNeigh:      30,
			MinDTperEvt:      1,
			MaxDTperEvt:      15,
			MaxIEdist:        40.0,
			MinPhaseWeight:   0.5,
			MinESdist:        0.0,
			MaxESdist:        400.0,
			MinEStoIEratio:   0.0,
		},

		Synth: SynthSettings{
			Enabled:          true,
			NumCC:            3,
			MinCoef:          0.6,
			MaxHalfWidth:     5.0,
			MaxAcceptableMAD: 0.3,
		},

		XCorr: map[string]PhaseXCorrConfig{
			"P": {StartOffset: -0.5, EndOffset: 1.0, MaxDelay: 0.3, MinCoef: 0.6},
			"S": {StartOffset: -0.5, EndOffset: 2.0, MaxDelay: 0.5, MinCoef: 0.5},
		},

		StorePath: "./hdd-work/runs.db",
	}
}
