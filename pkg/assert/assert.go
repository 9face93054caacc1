package assert

import (
	"fmt"
	"reflect"
	"runtime"
)

// NotCircular 检测单例构造时的循环依赖。
// 调用方如果已经出现在当前调用栈中，sync.Once 会死锁，这里提前panic。
func NotCircular() {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	self, more := frames.Next()
	for more {
		var f runtime.Frame
		f, more = frames.Next()
		if f.Function == self.Function {
			panic(fmt.Sprintf("circular singleton construction detected: %s", self.Function))
		}
	}
}

// NotNil 单例构造后必须非空
func NotNil(v interface{}) {
	if v == nil {
		panic("unexpected nil singleton")
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			panic("unexpected nil singleton: " + rv.Type().String())
		}
	}
}
