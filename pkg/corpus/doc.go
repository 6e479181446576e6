// Package corpus supplies text to the ngram package and moves predictions in
// and out of files.
//
// It resolves which training files to read, streams their lines through a
// Source that implements ngram.LineSource, reads prediction inputs, writes
// prediction outputs and builds held-out dev sets from training files.
package corpus
