package service

import (
	gonanoid "github.com/matoous/go-nanoid/v2"

	"guestlink/constant"
)

// CodeGenerator 生成候选短码，唯一性由存储层保证
type CodeGenerator func() string

// NewCode 用 crypto/rand 从 CodeAlphabet 均匀取 CodeLength 个字符，随机源失败时 panic
func NewCode() string {
	return gonanoid.MustGenerate(constant.CodeAlphabet, constant.CodeLength)
}
