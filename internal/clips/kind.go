package clips

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind identifies the media type a clip references
type Kind uint8

const (
	KindVideo Kind = iota + 1
	KindAudio
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	case KindImage:
		return "image"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Valid reports whether k is one of the known kinds
func (k Kind) Valid() bool {
	return k >= KindVideo && k <= KindImage
}

// Visual reports whether clips of this kind are drawn by the compositor
func (k Kind) Visual() bool {
	return k == KindVideo || k == KindImage
}

// Audible reports whether clips of this kind carry sound and honour volume
func (k Kind) Audible() bool {
	return k == KindVideo || k == KindAudio
}

// Timed reports whether the underlying source has its own clock
func (k Kind) Timed() bool {
	return k == KindVideo || k == KindAudio
}

// ParseKind converts a kind name to a Kind
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "video":
		return KindVideo, nil
	case "audio":
		return KindAudio, nil
	case "image":
		return KindImage, nil
	default:
		return 0, fmt.Errorf("unknown clip kind %q", s)
	}
}

var extensionKinds = map[string]Kind{
	".mp4":  KindVideo,
	".mov":  KindVideo,
	".mkv":  KindVideo,
	".webm": KindVideo,
	".avi":  KindVideo,
	".mp3":  KindAudio,
	".wav":  KindAudio,
	".m4a":  KindAudio,
	".flac": KindAudio,
	".ogg":  KindAudio,
	".png":  KindImage,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".gif":  KindImage,
}

// KindFromPath guesses the kind of a media file from its extension
func KindFromPath(path string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if k, ok := extensionKinds[ext]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("unsupported media extension %q", ext)
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid clip kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
