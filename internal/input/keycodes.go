package input

import "fmt"

// Linux input event key codes, from linux/input-event-codes.h.
var keyNames = map[uint16]string{
	1:   "KEY_ESC",
	12:  "KEY_MINUS",
	13:  "KEY_EQUAL",
	14:  "KEY_BACKSPACE",
	15:  "KEY_TAB",
	26:  "KEY_LEFTBRACE",
	27:  "KEY_RIGHTBRACE",
	28:  "KEY_ENTER",
	29:  "KEY_LEFTCTRL",
	39:  "KEY_SEMICOLON",
	40:  "KEY_APOSTROPHE",
	41:  "KEY_GRAVE",
	42:  "KEY_LEFTSHIFT",
	43:  "KEY_BACKSLASH",
	51:  "KEY_COMMA",
	52:  "KEY_DOT",
	53:  "KEY_SLASH",
	54:  "KEY_RIGHTSHIFT",
	55:  "KEY_KPASTERISK",
	56:  "KEY_LEFTALT",
	57:  "KEY_SPACE",
	58:  "KEY_CAPSLOCK",
	69:  "KEY_NUMLOCK",
	70:  "KEY_SCROLLLOCK",
	71:  "KEY_KP7",
	72:  "KEY_KP8",
	73:  "KEY_KP9",
	74:  "KEY_KPMINUS",
	75:  "KEY_KP4",
	76:  "KEY_KP5",
	77:  "KEY_KP6",
	78:  "KEY_KPPLUS",
	79:  "KEY_KP1",
	80:  "KEY_KP2",
	81:  "KEY_KP3",
	82:  "KEY_KP0",
	83:  "KEY_KPDOT",
	87:  "KEY_F11",
	88:  "KEY_F12",
	96:  "KEY_KPENTER",
	97:  "KEY_RIGHTCTRL",
	98:  "KEY_KPSLASH",
	99:  "KEY_SYSRQ",
	100: "KEY_RIGHTALT",
	102: "KEY_HOME",
	103: "KEY_UP",
	104: "KEY_PAGEUP",
	105: "KEY_LEFT",
	106: "KEY_RIGHT",
	107: "KEY_END",
	108: "KEY_DOWN",
	109: "KEY_PAGEDOWN",
	110: "KEY_INSERT",
	111: "KEY_DELETE",
	113: "KEY_MUTE",
	114: "KEY_VOLUMEDOWN",
	115: "KEY_VOLUMEUP",
	119: "KEY_PAUSE",
	125: "KEY_LEFTMETA",
	126: "KEY_RIGHTMETA",
	163: "KEY_NEXTSONG",
	164: "KEY_PLAYPAUSE",
	165: "KEY_PREVIOUSSONG",
	166: "KEY_STOPCD",
}

func init() {
	rows := []struct {
		first uint16
		keys  string
	}{
		{2, "1234567890"},
		{16, "QWERTYUIOP"},
		{30, "ASDFGHJKL"},
		{44, "ZXCVBNM"},
	}
	for _, r := range rows {
		for i, c := range r.keys {
			keyNames[r.first+uint16(i)] = "KEY_" + string(c)
		}
	}
	for i := uint16(0); i < 10; i++ {
		keyNames[59+i] = fmt.Sprintf("KEY_F%d", i+1)
	}
	for i := uint16(0); i < 12; i++ {
		keyNames[183+i] = fmt.Sprintf("KEY_F%d", i+13)
	}
}

// KeyName returns the identifier for a raw key code. Codes without a name
// are reported as KEY_<code> so they can still be bound.
func KeyName(code uint16) string {
	if n, ok := keyNames[code]; ok {
		return n
	}
	return fmt.Sprintf("KEY_%d", code)
}
