package config

// Core constants that define the fixed audio format and the bounds of the
// effect. The host delivers interleaved stereo int16 blocks at a fixed rate;
// everything downstream is sized from these.
const (
	// Fixed audio format
	SampleRate     = 44100 // Host sample rate (Hz)
	Channels       = 2     // Interleaved stereo
	FramesPerBlock = 128   // Maximum frames per processing call

	// Model and cabinet limits
	MaxIRLength       = 8192 // Maximum impulse response length (samples)
	MaxCatalogEntries = 256  // Maximum files listed per catalog scan

	// Directory names under the module dir
	ModelsDirName = "models"
	CabsDirName   = "cabs"

	// Default knob positions (0.5 -> -6dB)
	DefaultInputLevel  = 0.5
	DefaultOutputLevel = 0.5
)

// ModelExtensions lists the file extensions recognized as neural amp models.
var ModelExtensions = []string{".nam", ".json", ".aidax"}

// CabExtensions lists the file extensions recognized as cabinet IRs.
var CabExtensions = []string{".wav"}
