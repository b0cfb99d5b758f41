// Package render prints moneypit results for a terminal.
//
// Two formats are supported. FormatTable writes go-pretty tables in the
// light box style; FormatJSON writes the same data as indented JSON so the
// output can be piped into other tools. Reports, coefficient tables and
// server statistics all go through the same Format switch.
package render
