package driver

// IndexQueries are run once at startup.
var IndexQueries = []string{
	"CREATE INDEX ON :UserProfile(key);",
	"CREATE INDEX ON :UserProfile(district);",
}

const (
	SaveProfileQuery = `
		MERGE (p:UserProfile {key: $key})
		SET p.name = $name,
			p.dob = $dob,
			p.district = $district,
			p.occupation = $occupation,
			p.conditions = $conditions,
			p.document = $document,
			p.updated_at = $updated_at
		RETURN p.key AS key
	`

	GetProfileQuery = `
		MATCH (p:UserProfile {key: $key})
		RETURN p.document AS document
	`

	DeleteProfileQuery = `
		MATCH (p:UserProfile {key: $key})
		WITH p, p.key AS key
		DETACH DELETE p
		RETURN key
	`
)
