/*
Package ngram implements a character-level n-gram language model for
next-character prediction.

A Model counts, for every trailing context of up to Order-1 characters, the
characters that followed it in the training text. Counts are bounded by a
trimming policy so a trained model fits a fixed memory and disk budget, and
predictions blend per-context distributions from the shortest to the longest
matching context using absolute discounting with a continuation-count
(Kneser-Ney style) lowest order.

A model is trained once with Fit, after which it is read-only: Predict,
PredictTopK and PredictBatch may be called from any number of goroutines
without coordination. Checkpoints are a single gzip-compressed JSON document
written with SaveFile and read with LoadFile.
*/
package ngram
