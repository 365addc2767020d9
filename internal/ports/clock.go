package ports

import "time"

// Clock supplies the current time to the Tile Muxer so tests can freeze it
// (spec §9: "Clock injection").
type Clock interface {
	Now() time.Time
}
