// Package holderholds implements the "my rentals" query of the kiosk.
//
// It lists the open holds of one member or guest with the time left until each
// deadline. Guests are matched by their normalized name.
package holderholds
