package main

import "time"

func timeFromEpochMs(ms int64) time.Time {
	return time.UnixMilli(ms)
}
