// Package slot provides the types shared by the fetcher, matcher and monitor.
//
// A Target is one monitored office/calendar combination and a Slot is one
// appointment date discovered for it. Slots are recomputed on every poll;
// the only state that outlives a poll cycle is the Memory of dates that
// were already alerted on and the Board of the latest dates per target.
// Neither is persisted: a restart starts from empty.
package slot
