package main

import (
	"log"
	"os"

	"go.uber.org/zap"
)

type logger struct{}

func (logger) Fatal(args ...interface{}) {}

func main() {
	var l logger
	l.Fatal("method is fine")

	defer func() {
		os.Exit(2) // want "вызов os.Exit в функции main запрещён"
	}()
	zap.L().Error("logging is fine")
	zap.L().Fatal("boom")    // want "вызов zap.Logger.Fatal в функции main запрещён"
	log.Fatalf("boom %d", 1) // want "вызов log.Fatalf в функции main запрещён"
	os.Exit(1)               // want "вызов os.Exit в функции main запрещён"
}

func helper() {
	os.Exit(3)
	log.Fatal("allowed outside main")
	zap.L().Fatal("allowed outside main")
}
