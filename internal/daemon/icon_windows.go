//go:build windows

package daemon

import _ "embed"

//go:embed calendar.ico
var calendarIcon []byte

func getCalendarIcon() []byte {
	return calendarIcon
}
