package bootstrap

import (
	"log"

	"anoa.com/studentrecords/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Student{},
		&model.Grade{},
		&model.Project{},
		&model.BookLoan{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []model.Role{
		{Name: model.RoleAdmin, Description: "Administrator"},
		{Name: model.RoleStudent, Description: "Student"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&model.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// SeedAdminUser creates a default admin for local development.
// Production admins go through /auth/create-admin with the admin secret.
func SeedAdminUser(db *gorm.DB) error {
	var adminRole model.Role
	if err := db.Where("name = ?", model.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&model.User{}).
		Where("email = ?", "admin@studentrecords.local").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	password := "admin123"
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := model.User{
		Email:        "admin@studentrecords.local",
		PasswordHash: string(hashedPasswordBytes),
		RoleID:       &adminRole.ID,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Println("✅ Admin user seeded successfully")
	log.Println("   Email: admin@studentrecords.local")
	log.Println("   Password: admin123")

	return nil
}
