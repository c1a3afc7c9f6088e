package repository

import "errors"

// ErrNotFound は指定したレコードが存在しない場合に返す
var ErrNotFound = errors.New("not found")

// ErrDuplicate は一意制約（プロジェクトの slug、ユーザーのメール）に
// 違反した書き込みで返す
var ErrDuplicate = errors.New("duplicate key")
