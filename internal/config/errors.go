package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrUnknownGormEngine error if db.gormengine is not one of postgres, mysql or sqlite.
	ErrUnknownGormEngine = errors.New("toml config db.gormengine is unknown")

	// ErrUnknownStorageDriver error if storage.driver is not one of s3 or memory.
	ErrUnknownStorageDriver = errors.New("toml config storage.driver is unknown")

	// ErrUnknownPushProvider error if push.provider is not one of fcm, sns or none.
	ErrUnknownPushProvider = errors.New("toml config push.provider is unknown")

	// ErrFCMProjectIDEmpty error if the fcm provider is selected without a project id.
	ErrFCMProjectIDEmpty = errors.New("toml config push.fcm.projectid can not be empty")

	// ErrBatchSizeNegative error if dispatcher.batchsize is below zero.
	ErrBatchSizeNegative = errors.New("toml config dispatcher.batchsize can not be negative")
)
