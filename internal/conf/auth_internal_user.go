package conf

// AuthInternalUser is a publisher allowed by the internal authorization method.
type AuthInternalUser struct {
	// stream name. "any" matches every stream name.
	Name string `json:"name"`

	// stream key.
	Key Credential `json:"key"`
}
