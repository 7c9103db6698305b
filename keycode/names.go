package keycode

import (
	"fmt"
	"strconv"
	"strings"
)

// vkNames maps virtual keys to the canonical names used in profile files.
// Letters, digits and F-keys are handled programmatically.
var vkNames = map[uint16]string{
	VKBackspace:  "BACKSPACE",
	VKTab:        "TAB",
	VKEnter:      "ENTER",
	VKShift:      "SHIFT",
	VKControl:    "CTRL",
	VKAlt:        "ALT",
	VKPause:      "PAUSE",
	VKCapsLock:   "CAPSLOCK",
	VKEscape:     "ESCAPE",
	VKSpace:      "SPACE",
	VKPageUp:     "PAGEUP",
	VKPageDown:   "PAGEDOWN",
	VKEnd:        "END",
	VKHome:       "HOME",
	VKLeft:       "LEFT",
	VKUp:         "UP",
	VKRight:      "RIGHT",
	VKDown:       "DOWN",
	VKPrintScrn:  "PRINTSCREEN",
	VKInsert:     "INSERT",
	VKDelete:     "DELETE",
	VKLeftWin:    "LWIN",
	VKRightWin:   "RWIN",
	VKApps:       "APPS",
	VKNumLock:    "NUMLOCK",
	VKScrollLock: "SCROLLLOCK",

	VKLeftShift:    "LSHIFT",
	VKRightShift:   "RSHIFT",
	VKLeftControl:  "LCTRL",
	VKRightControl: "RCTRL",
	VKLeftAlt:      "LALT",
	VKRightAlt:     "RALT",

	VKNumpad0:   "NUMPAD0",
	VKNumpad1:   "NUMPAD1",
	VKNumpad2:   "NUMPAD2",
	VKNumpad3:   "NUMPAD3",
	VKNumpad4:   "NUMPAD4",
	VKNumpad5:   "NUMPAD5",
	VKNumpad6:   "NUMPAD6",
	VKNumpad7:   "NUMPAD7",
	VKNumpad8:   "NUMPAD8",
	VKNumpad9:   "NUMPAD9",
	VKMultiply:  "MULTIPLY",
	VKAdd:       "ADD",
	VKSeparator: "SEPARATOR",
	VKSubtract:  "SUBTRACT",
	VKDecimal:   "DECIMAL",
	VKDivide:    "DIVIDE",

	VKSemicolon: "SEMICOLON",
	VKEquals:    "EQUALS",
	VKComma:     "COMMA",
	VKMinus:     "MINUS",
	VKPeriod:    "PERIOD",
	VKSlash:     "SLASH",
	VKBacktick:  "BACKTICK",
	VKLBracket:  "LBRACKET",
	VKBackslash: "BACKSLASH",
	VKRBracket:  "RBRACKET",
	VKQuote:     "QUOTE",

	VKVolumeMute:     "VOLUME_MUTE",
	VKVolumeDown:     "VOLUME_DOWN",
	VKVolumeUp:       "VOLUME_UP",
	VKMediaNext:      "MEDIA_NEXT",
	VKMediaPrev:      "MEDIA_PREV",
	VKMediaStop:      "MEDIA_STOP",
	VKMediaPlayPause: "MEDIA_PLAY_PAUSE",
}

var nameToVK = make(map[string]uint16, len(vkNames))

func init() {
	for vk, name := range vkNames {
		nameToVK[name] = vk
	}
}

// Name renders a virtual key as its canonical profile name. Keys without a
// dedicated name render as VK_0xNN, which FromName parses back.
func Name(vk uint16) string {
	if name, ok := vkNames[vk]; ok {
		return name
	}
	if (vk >= 'A' && vk <= 'Z') || (vk >= '0' && vk <= '9') {
		return string(rune(vk))
	}
	if vk >= VKF1 && vk <= VKF24 {
		return fmt.Sprintf("F%d", vk-VKF1+1)
	}
	return fmt.Sprintf("VK_0x%02X", vk)
}

// FromName parses a profile key name back to a virtual key. Matching is
// case-insensitive. Returns false for names it does not recognize.
func FromName(name string) (uint16, bool) {
	s := strings.ToUpper(strings.TrimSpace(name))
	if s == "" {
		return 0, false
	}
	if vk, ok := nameToVK[s]; ok {
		return vk, true
	}
	if len(s) == 1 {
		c := s[0]
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			return uint16(c), true
		}
	}
	if rest, ok := strings.CutPrefix(s, "F"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 1 && n <= 24 {
			return VKF1 + uint16(n-1), true
		}
	}
	if rest, ok := strings.CutPrefix(s, "VK_"); ok {
		if n, err := strconv.ParseUint(strings.TrimPrefix(rest, "0X"), 16, 16); err == nil {
			return uint16(n), true
		}
	}
	return 0, false
}
