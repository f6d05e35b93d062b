package audio

import "strings"

// Names that indicate a software loopback/aggregate endpoint rather
// than a physical microphone. Recording from one of these silently
// captures system output instead of the user's voice.
var virtualKeywords = []string{
	"blackhole", "soundflower", "loopback", "virtual", "aggregate",
}

func IsVirtual(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range virtualKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

var btKeywords = []string{
	"airpods", "beats", "bose", "wh-1000", "wf-1000",
	"sony wh-", "sony wf-",
	"jabra", "galaxy buds", "pixel buds", "powerbeats",
	"jbl ", "sennheiser momentum", "plantronics",
	"tozo", "anker soundcore", "skullcandy",
	"bluetooth", " bt ", " bt)", " bt]",
}

func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range btKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Preferred returns the first device that does not look like a virtual
// endpoint, or nil to mean the OS default input device.
func Preferred(devices []DeviceInfo) *DeviceInfo {
	for i := range devices {
		if !IsVirtual(devices[i].Name) {
			return &devices[i]
		}
	}
	return nil
}

type DataCallback func(data []byte, frameCount uint32)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
	DeviceName() string
}
