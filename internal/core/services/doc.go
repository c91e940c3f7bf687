// Package services implements the driving port interfaces.
// Services hold the merge pipeline's orchestration: the per-document state
// machine, the batch worker pool, postings derivation and the scheduler.
//
// Services reach files, vocabularies and the database only through
// driven ports.
package services
