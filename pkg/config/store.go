package config

// Store persists a configuration after each mutation of the setup flow.
type Store interface {
	Save(cfg *Config) error
}

// FileStore writes the configuration to a YAML file on every save.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// NewDefaultFileStore creates a store backed by the default config path.
func NewDefaultFileStore() (*FileStore, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return NewFileStore(path), nil
}

// Path returns the file the store writes to.
func (s *FileStore) Path() string {
	return s.path
}

// Save writes the configuration to disk.
func (s *FileStore) Save(cfg *Config) error {
	return cfg.SaveToPath(s.path)
}
