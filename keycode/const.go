package keycode

// Windows virtual-key codes used throughout the remapping engine.
// Letters and digits use their ASCII values and are not enumerated here.
const (
	VKBackspace  uint16 = 0x08
	VKTab        uint16 = 0x09
	VKEnter      uint16 = 0x0D
	VKShift      uint16 = 0x10
	VKControl    uint16 = 0x11
	VKAlt        uint16 = 0x12
	VKPause      uint16 = 0x13
	VKCapsLock   uint16 = 0x14
	VKEscape     uint16 = 0x1B
	VKSpace      uint16 = 0x20
	VKPageUp     uint16 = 0x21
	VKPageDown   uint16 = 0x22
	VKEnd        uint16 = 0x23
	VKHome       uint16 = 0x24
	VKLeft       uint16 = 0x25
	VKUp         uint16 = 0x26
	VKRight      uint16 = 0x27
	VKDown       uint16 = 0x28
	VKPrintScrn  uint16 = 0x2C
	VKInsert     uint16 = 0x2D
	VKDelete     uint16 = 0x2E
	VKLeftWin    uint16 = 0x5B
	VKRightWin   uint16 = 0x5C
	VKApps       uint16 = 0x5D
	VKNumLock    uint16 = 0x90
	VKScrollLock uint16 = 0x91

	VKLeftShift    uint16 = 0xA0
	VKRightShift   uint16 = 0xA1
	VKLeftControl  uint16 = 0xA2
	VKRightControl uint16 = 0xA3
	VKLeftAlt      uint16 = 0xA4
	VKRightAlt     uint16 = 0xA5
)

// Function keys F1-F24.
const (
	VKF1  uint16 = 0x70
	VKF2  uint16 = 0x71
	VKF3  uint16 = 0x72
	VKF4  uint16 = 0x73
	VKF5  uint16 = 0x74
	VKF6  uint16 = 0x75
	VKF7  uint16 = 0x76
	VKF8  uint16 = 0x77
	VKF9  uint16 = 0x78
	VKF10 uint16 = 0x79
	VKF11 uint16 = 0x7A
	VKF12 uint16 = 0x7B
	VKF13 uint16 = 0x7C
	VKF14 uint16 = 0x7D
	VKF15 uint16 = 0x7E
	VKF16 uint16 = 0x7F
	VKF17 uint16 = 0x80
	VKF18 uint16 = 0x81
	VKF19 uint16 = 0x82
	VKF20 uint16 = 0x83
	VKF21 uint16 = 0x84
	VKF22 uint16 = 0x85
	VKF23 uint16 = 0x86
	VKF24 uint16 = 0x87
)

// Numpad keys.
const (
	VKNumpad0   uint16 = 0x60
	VKNumpad1   uint16 = 0x61
	VKNumpad2   uint16 = 0x62
	VKNumpad3   uint16 = 0x63
	VKNumpad4   uint16 = 0x64
	VKNumpad5   uint16 = 0x65
	VKNumpad6   uint16 = 0x66
	VKNumpad7   uint16 = 0x67
	VKNumpad8   uint16 = 0x68
	VKNumpad9   uint16 = 0x69
	VKMultiply  uint16 = 0x6A
	VKAdd       uint16 = 0x6B
	VKSeparator uint16 = 0x6C
	VKSubtract  uint16 = 0x6D
	VKDecimal   uint16 = 0x6E
	VKDivide    uint16 = 0x6F
)

// OEM and media keys.
const (
	VKSemicolon uint16 = 0xBA
	VKEquals    uint16 = 0xBB
	VKComma     uint16 = 0xBC
	VKMinus     uint16 = 0xBD
	VKPeriod    uint16 = 0xBE
	VKSlash     uint16 = 0xBF
	VKBacktick  uint16 = 0xC0
	VKLBracket  uint16 = 0xDB
	VKBackslash uint16 = 0xDC
	VKRBracket  uint16 = 0xDD
	VKQuote     uint16 = 0xDE

	VKVolumeMute     uint16 = 0xAD
	VKVolumeDown     uint16 = 0xAE
	VKVolumeUp       uint16 = 0xAF
	VKMediaNext      uint16 = 0xB0
	VKMediaPrev      uint16 = 0xB1
	VKMediaStop      uint16 = 0xB2
	VKMediaPlayPause uint16 = 0xB3
)
