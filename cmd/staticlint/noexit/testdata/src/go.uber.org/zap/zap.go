package zap

type Field struct{}

type Logger struct{}

func L() *Logger { return &Logger{} }

func (*Logger) Fatal(msg string, fields ...Field) {}

func (*Logger) Error(msg string, fields ...Field) {}
