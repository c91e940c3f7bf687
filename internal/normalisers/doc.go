// Package normalisers provides implementations of the Normaliser interface
// for the external entity recognizers. Each normaliser maps one recognizer's
// raw BioC annotations into the canonical taxonomy and identifier scheme.
//
// Normalisers are registered with the NormaliserRegistry at startup.
// The helpers in this package hold the mapping rules shared by all of them.
package normalisers
