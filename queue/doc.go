/*
Package queue defines the tasks that develop the nodes of a tree, each
carrying the samples that reach its node and the label to fall back to
when none do, and a Queue interface to hand them out to workers.

New returns an in-memory FIFO implementation of Queue.
*/
package queue
