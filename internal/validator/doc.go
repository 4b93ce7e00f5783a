// Package validator decides whether extracted first and last names belong
// to people.
//
// Each name is checked in order against operator exceptions, structure
// rules, false positive terms (street names, business words, web page
// boilerplate) and the embedded first and last name lists. The signals are
// combined into a weighted score in [0, 1]:
//
//	structure*0.2 + false positives*0.3 + name lists*0.3 + capitalization*0.2
//
// A name is valid from 0.5. Valid names scoring at least 0.7 are accepted,
// the other valid names are uncertain and anything else is rejected. Uncertain names are kept in unattended runs and
// offered to the operator otherwise; the answers become exceptions that
// later runs honour.
package validator
