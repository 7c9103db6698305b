// Package keycode translates between hardware scan codes (PC scan code set 1,
// as delivered by the Interception driver) and Windows virtual-key codes, and
// names keys for human-readable remap profiles.
package keycode

// scanPair relates one make code to a virtual key. Ordered so that when two
// scan codes resolve to the same VK (left/right shift), the reverse table
// keeps the first, left-hand variant.
type scanPair struct {
	scan uint16
	vk   uint16
}

var basePairs = []scanPair{
	{0x1E, 'A'}, {0x30, 'B'}, {0x2E, 'C'}, {0x20, 'D'}, {0x12, 'E'},
	{0x21, 'F'}, {0x22, 'G'}, {0x23, 'H'}, {0x17, 'I'}, {0x24, 'J'},
	{0x25, 'K'}, {0x26, 'L'}, {0x32, 'M'}, {0x31, 'N'}, {0x18, 'O'},
	{0x19, 'P'}, {0x10, 'Q'}, {0x13, 'R'}, {0x1F, 'S'}, {0x14, 'T'},
	{0x16, 'U'}, {0x2F, 'V'}, {0x11, 'W'}, {0x2D, 'X'}, {0x15, 'Y'},
	{0x2C, 'Z'},

	{0x02, '1'}, {0x03, '2'}, {0x04, '3'}, {0x05, '4'}, {0x06, '5'},
	{0x07, '6'}, {0x08, '7'}, {0x09, '8'}, {0x0A, '9'}, {0x0B, '0'},

	{0x3B, VKF1}, {0x3C, VKF2}, {0x3D, VKF3}, {0x3E, VKF4},
	{0x3F, VKF5}, {0x40, VKF6}, {0x41, VKF7}, {0x42, VKF8},
	{0x43, VKF9}, {0x44, VKF10}, {0x57, VKF11}, {0x58, VKF12},
	{0x64, VKF13}, {0x65, VKF14}, {0x66, VKF15}, {0x67, VKF16},
	{0x68, VKF17}, {0x69, VKF18}, {0x6A, VKF19}, {0x6B, VKF20},
	{0x6C, VKF21}, {0x6D, VKF22}, {0x6E, VKF23}, {0x76, VKF24},

	{0x01, VKEscape}, {0x0E, VKBackspace}, {0x0F, VKTab},
	{0x1C, VKEnter}, {0x39, VKSpace}, {0x3A, VKCapsLock},
	{0x46, VKScrollLock},

	// Left-hand modifiers first so the reverse table prefers them.
	{0x2A, VKLeftShift}, {0x1D, VKLeftControl}, {0x38, VKLeftAlt},
	{0x36, VKRightShift},

	{0x0C, VKMinus}, {0x0D, VKEquals}, {0x1A, VKLBracket},
	{0x1B, VKRBracket}, {0x2B, VKBackslash}, {0x27, VKSemicolon},
	{0x28, VKQuote}, {0x29, VKBacktick}, {0x33, VKComma},
	{0x34, VKPeriod}, {0x35, VKSlash},

	{0x45, VKNumLock},
	{0x52, VKNumpad0}, {0x4F, VKNumpad1}, {0x50, VKNumpad2},
	{0x51, VKNumpad3}, {0x4B, VKNumpad4}, {0x4C, VKNumpad5},
	{0x4D, VKNumpad6}, {0x47, VKNumpad7}, {0x48, VKNumpad8},
	{0x49, VKNumpad9}, {0x37, VKMultiply}, {0x4E, VKAdd},
	{0x4A, VKSubtract}, {0x53, VKDecimal},
}

// extPairs covers scan codes that arrive with the E0 prefix flag set. These
// share make codes with unrelated base keys (numpad enter vs enter, arrows vs
// numpad digits), so they live in their own table.
var extPairs = []scanPair{
	{0x1C, VKEnter}, // numpad enter
	{0x1D, VKRightControl},
	{0x38, VKRightAlt},
	{0x47, VKHome}, {0x48, VKUp}, {0x49, VKPageUp},
	{0x4B, VKLeft}, {0x4D, VKRight},
	{0x4F, VKEnd}, {0x50, VKDown}, {0x51, VKPageDown},
	{0x52, VKInsert}, {0x53, VKDelete},
	{0x35, VKDivide},
	{0x5B, VKLeftWin}, {0x5C, VKRightWin}, {0x5D, VKApps},
}

var (
	baseScanToVK = make(map[uint16]uint16, len(basePairs))
	extScanToVK  = make(map[uint16]uint16, len(extPairs))
	vkToScan     = make(map[uint16]uint16, len(basePairs)+len(extPairs))
)

func init() {
	for _, p := range basePairs {
		baseScanToVK[p.scan] = p.vk
		if _, ok := vkToScan[p.vk]; !ok {
			vkToScan[p.vk] = p.scan
		}
	}
	for _, p := range extPairs {
		extScanToVK[p.scan] = p.vk
		if _, ok := vkToScan[p.vk]; !ok {
			vkToScan[p.vk] = p.scan
		}
	}
}

// VKFromScan resolves a hardware scan code to a virtual-key code, consulting
// the extended table when the stroke carried the E0 prefix. Unknown codes map
// to themselves so unmapped keys still produce a stable identity.
func VKFromScan(scan uint16, extended bool) uint16 {
	if extended {
		if vk, ok := extScanToVK[scan]; ok {
			return vk
		}
		return scan
	}
	if vk, ok := baseScanToVK[scan]; ok {
		return vk
	}
	return scan
}

// ScanFromVK resolves a virtual-key code back to a scan code for injection.
// VKs reachable from two physical keys resolve to the left-hand variant.
// Unknown VKs map to themselves.
func ScanFromVK(vk uint16) uint16 {
	if scan, ok := vkToScan[vk]; ok {
		return scan
	}
	return vk
}

// modifierSet is the closed set of modifier virtual keys, both the generic
// codes reported by scan translation and the left/right-specific ones.
var modifierSet = map[uint16]struct{}{
	VKShift: {}, VKControl: {}, VKAlt: {},
	VKLeftShift: {}, VKRightShift: {},
	VKLeftControl: {}, VKRightControl: {},
	VKLeftAlt: {}, VKRightAlt: {},
	VKLeftWin: {}, VKRightWin: {},
}

// IsModifier reports whether vk is a modifier key (shift/ctrl/alt/win in any
// variant). Modifiers are held across a synthesized combo; other keys are
// tapped.
func IsModifier(vk uint16) bool {
	_, ok := modifierSet[vk]
	return ok
}

// extendedVKSet lists VKs that require the extended-key flag when injected
// through SendInput.
var extendedVKSet = map[uint16]struct{}{
	VKPageUp: {}, VKPageDown: {}, VKEnd: {}, VKHome: {},
	VKLeft: {}, VKUp: {}, VKRight: {}, VKDown: {},
	VKInsert: {}, VKDelete: {},
	VKLeftWin: {}, VKRightWin: {},
	VKDivide: {},
	VKRightControl: {}, VKRightAlt: {},
}

// IsExtendedVK reports whether vk must be injected with the extended-key flag.
func IsExtendedVK(vk uint16) bool {
	_, ok := extendedVKSet[vk]
	return ok
}
