package database

import (
	"log"

	"folio/models"

	"gorm.io/gorm"
)

// Tables lists every model owned by the schema, parents before children.
func Tables() []any {
	return []any{
		&models.User{},
		&models.Session{},
		&models.Upload{},

		&models.Tag{},
		&models.Category{},
		&models.Framework{},
		&models.ProgrammingLanguage{},

		&models.BlogPost{},
		&models.Project{},
		&models.Experience{},
		&models.Education{},
		&models.Testimonial{},

		&models.BlogPostTranslation{},
		&models.ProjectTranslation{},
		&models.ExperienceTranslation{},
		&models.EducationTranslation{},
		&models.TestimonialTranslation{},

		&models.Hobby{},
		&models.Anime{},
		&models.Book{},
		&models.Game{},
		&models.Music{},
		&models.Instrument{},
		&models.SpokenLanguage{},
		&models.MartialArt{},
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(Tables()...)
	if err != nil {
		log.Printf("Error running migrations: %v", err)
		return err
	}

	log.Println("Migrations completed successfully")
	return nil
}
