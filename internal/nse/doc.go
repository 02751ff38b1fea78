// Package nse downloads the daily derivatives reports published in the NSE
// archive: the participant-wise open interest CSV that feeds the strength
// classifier and the FII statistics workbook.
//
// The archive refuses clients without a browser session, so a Client first
// visits the home page (or takes cookies from a Chrome session via
// BrowserCookies) and then fetches reports one at a time, spaced by a rate
// limiter and retried with exponential backoff.
package nse
