// Package scheduler starts schedules at their configured wall-clock time.
// It runs a single goroutine over a min-heap of ScheduleEvents sorted by
// trigger time, sleeping at most 60 seconds at a time so that NTP steps,
// DST transitions and system sleep cannot push a start far past its time.
//
// The scheduler only decides when. It calls the registered OnTrigger
// callback with the schedule ID and the daemon loads and starts the run.
// Nothing is persisted here; the heap is rebuilt from the stored schedules
// on daemon restart.
package scheduler
