package pkg

import "time"

// Clock 注入式时钟，测试里可替换
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
