// Package slot models wall-clock booking time at half-hour granularity.
//
// A TimeOfDay counts half-hour units from midnight, a Date is a civil
// Gregorian date, and an Instant pairs the two. No timezone handling is
// performed: every value is local wall-clock time.
package slot
