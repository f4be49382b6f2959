package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	SessionStoreMySQL = "mysql"
	SessionStoreRedis = "redis"
	SessionStoreMongo = "mongo"
)

// 练习题数量范围
const (
	MinPracticeCount = 1
	MaxPracticeCount = 50
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)
