// Package config builds a *logger.Logger from declarative settings.
//
// Settings come from Default, a preset (NewDevelopment, NewProduction) or
// the environment through Load, which reads RLOG_* variables with viper:
//
//	RLOG_LEVEL=debug
//	RLOG_CALLER=true
//	RLOG_FIELDS=service=api,region=eu
//	RLOG_CONSOLE_FORMAT=json
//	RLOG_CONSOLE_ASYNC=true
//	RLOG_FILE_ENABLED=true
//	RLOG_FILE_PATH=/var/log/app.log
//	RLOG_FILE_MAX_SIZE_MB=100
//	RLOG_FILE_ROTATE_INTERVAL=24h
//	RLOG_ZAP_ENABLED=true
//	RLOG_ZEROLOG_ENABLED=true
//	RLOG_LOGRUS_ENABLED=true
//
// LoadDotEnv loads a .env file into the environment first. Build then
// registers the enabled reporters in the order console, file, zap, zerolog,
// logrus.
package config
