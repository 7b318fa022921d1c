package config

type AppConfig struct {
	Server ServerConfig
	Log    LogConfig
	Mining MiningConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	miningCfg, err := LoadMining()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server: serverCfg,
		Log:    logCfg,
		Mining: miningCfg,
	}, nil
}
