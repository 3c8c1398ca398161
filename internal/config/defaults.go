package config

const (
	defaultSavePath        = "~/loom/output"
	defaultLogDir          = "~/.local/share/loom/logs"
	defaultModality        = "image"
	defaultWidth           = 720
	defaultHeight          = 1280
	defaultFrameCount      = 129
	defaultFPS             = 25
	defaultGuidanceScale   = 7.5
	defaultInferSteps      = 50
	defaultFlowShift       = 5.0
	defaultLinearSchedEnd  = 25
	defaultSamplesPerRec   = 1
	defaultAudioStrength   = 1.0
	defaultBackend         = "null"
	defaultOnCodecError    = "abort"
	defaultFFmpegBinary    = "ffmpeg"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultPosPromptPrefix = ""
	defaultNegPromptPrefix = ""
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SavePath: defaultSavePath,
			LogDir:   defaultLogDir,
		},
		Dataset: Dataset{
			Modality: defaultModality,
		},
		Generation: Generation{
			Width:             defaultWidth,
			Height:            defaultHeight,
			FrameCount:        defaultFrameCount,
			FPS:               defaultFPS,
			GuidanceScale:     defaultGuidanceScale,
			InferSteps:        defaultInferSteps,
			FlowShift:         defaultFlowShift,
			LinearScheduleEnd: defaultLinearSchedEnd,
			SamplesPerPrompt:  defaultSamplesPerRec,
			AudioStrength:     defaultAudioStrength,
			PosPromptPrefix:   defaultPosPromptPrefix,
			NegPromptPrefix:   defaultNegPromptPrefix,
		},
		Pipeline: Pipeline{
			Backend:      defaultBackend,
			OnCodecError: defaultOnCodecError,
			FFmpegBinary: defaultFFmpegBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
