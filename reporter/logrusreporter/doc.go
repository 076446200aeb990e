// Package logrusreporter forwards log objects to github.com/sirupsen/logrus.
//
// The object's timestamp becomes the entry time, fields become logrus
// fields and plain arguments an "args" field.
package logrusreporter
