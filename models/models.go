package models

// All lists every model for auto-migration.
func All() []interface{} {
	return []interface{}{
		&User{}, &Category{}, &Post{}, &File{}, &TeamMember{}, &Publication{}, &ResearchProject{},
	}
}
