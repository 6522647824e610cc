// Package scraper provides HTTP fetching and HTML parsing for the appointment scheduler.
//
// The scraper opens a cookie session against the scheduler, then posts the
// calendar form once per monitored target and reads the table headers of
// the result page. Each header holding a "weekday, dd.mm.yyyy" date becomes
// a slot; everything else on the page is ignored.
package scraper
