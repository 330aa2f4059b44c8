package config

// DefaultVocabulary is the skill vocabulary used when the config omits one.
var DefaultVocabulary = []string{"python", "aws", "docker", "kubernetes", "terraform"}

// DefaultHiredStatuses are the outcome statuses counted as a positive label.
var DefaultHiredStatuses = []string{"hired", "contratado"}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/omiai/data/db/talent.db"
	}
	if cfg.Storage.JobIndexPath == "" {
		cfg.Storage.JobIndexPath = "/usr/local/var/omiai/data/indices/jobs"
	}
	if cfg.Storage.ArtifactDir == "" {
		cfg.Storage.ArtifactDir = "/usr/local/var/omiai/data/artifacts"
	}
	if len(cfg.Vocabulary) == 0 {
		cfg.Vocabulary = append([]string(nil), DefaultVocabulary...)
	}
	if len(cfg.Training.HiredStatuses) == 0 {
		cfg.Training.HiredStatuses = append([]string(nil), DefaultHiredStatuses...)
	}
	if cfg.Training.Epochs == 0 {
		cfg.Training.Epochs = 200
	}
	if cfg.Training.LearningRate == 0 {
		cfg.Training.LearningRate = 0.5
	}
	if cfg.Recommend.DefaultTopN == 0 {
		cfg.Recommend.DefaultTopN = 10
	}
	if cfg.Recommend.MaxTopN == 0 {
		cfg.Recommend.MaxTopN = 100
	}
	if cfg.Recommend.MaxApplicants == 0 {
		cfg.Recommend.MaxApplicants = 150
	}
	if cfg.Recommend.JobSearchLimit == 0 {
		cfg.Recommend.JobSearchLimit = 50
	}
}
