package model

import (
	"database/sql/driver"
	"fmt"
)

// LandingFlag 代码里是 bool，guesturl 表里存成文本 "true"/"false"
type LandingFlag bool

const (
	landingTrue  = "true"
	landingFalse = "false"
)

func (f LandingFlag) String() string {
	if f {
		return landingTrue
	}
	return landingFalse
}

// Value 实现 driver.Valuer
func (f LandingFlag) Value() (driver.Value, error) {
	return f.String(), nil
}

// Scan 实现 sql.Scanner，只接受两个字面量
func (f *LandingFlag) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		*f = false
		return nil
	default:
		return fmt.Errorf("landing flag: unsupported column type %T", src)
	}

	switch s {
	case landingTrue:
		*f = true
	case landingFalse:
		*f = false
	default:
		return fmt.Errorf("landing flag: unexpected value %q", s)
	}
	return nil
}
