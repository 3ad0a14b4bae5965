package config

// Transcription engines.
const (
	EngineWhisper  = "whisper"
	EngineWhisperX = "whisperx"
)

// Download modes.
const (
	ModeBestAudio = "bestaudio"
	ModeBest      = "best"
	ModeWorst     = "worst"
)

const (
	defaultConfigPath         = "~/.config/ytscribe/config.toml"
	defaultOutputDir          = "outputs"
	defaultLogDir             = "~/.local/share/ytscribe/logs"
	defaultDownloadMode       = ModeBestAudio
	defaultDownloadAudio      = "mp3"
	defaultDownloadQuality    = "128K"
	defaultExtractAudioFormat = "mp3"
	defaultEngine             = EngineWhisper
	defaultModel              = "base"
	defaultBeamSize           = 5
	defaultBestOf             = 5
	defaultVADNoiseDB         = -30
	defaultVADMinSilence      = 0.5
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultFFmpegBinary       = "ffmpeg"
	defaultFFprobeBinary      = "ffprobe"
	defaultYTDLPBinary        = "yt-dlp"
	defaultWhisperBinary      = "whisper"
	defaultUVXBinary          = "uvx"
	defaultPythonBinary       = "python3"
)

// AudioFormats lists the extraction targets accepted by the extract step.
var AudioFormats = []string{"mp3", "wav", "m4a", "flac", "aac", "opus"}

// DownloadModes lists the accepted downloader modes.
var DownloadModes = []string{ModeBestAudio, ModeBest, ModeWorst}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Download: Download{
			Mode:         defaultDownloadMode,
			AudioFormat:  defaultDownloadAudio,
			AudioQuality: defaultDownloadQuality,
		},
		Extract: Extract{
			AudioFormat: defaultExtractAudioFormat,
		},
		Transcription: Transcription{
			Engine:        defaultEngine,
			Model:         defaultModel,
			BeamSize:      defaultBeamSize,
			BestOf:        defaultBestOf,
			VADNoiseDB:    defaultVADNoiseDB,
			VADMinSilence: defaultVADMinSilence,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
