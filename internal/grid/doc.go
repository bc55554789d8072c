// Package grid provides connectivity to a remote Selenium Grid hub.
// It builds browser capabilities, verifies hub availability, creates
// WebDriver sessions through the tebeka/selenium client, and wraps the
// live session with the small surface gridscan needs: navigation,
// element waits, page queries, and screenshots.
package grid
