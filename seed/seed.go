// Package seed fills an empty database with the lab's demo accounts and content.
// Every record is matched on a natural key first, so running it again changes nothing.
package seed

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/aridlab/labsite/models"
	"github.com/aridlab/labsite/utils"
)

// Account is a seeded login.
type Account struct {
	Username string
	Email    string
	Password string
	Name     string
	Role     string
	Bio      string
}

// DefaultAccounts are the admin and editor logins created by Run.
var DefaultAccounts = []Account{
	{Username: "admin", Email: "admin@lab.com", Password: "admin123", Name: "管理员", Role: models.RoleAdmin, Bio: "系统管理员账户"},
	{Username: "editor", Email: "editor@lab.com", Password: "editor123", Name: "编辑员", Role: models.RoleEditor, Bio: "内容编辑员"},
}

// Run seeds users, categories, team members, publications, projects and posts in one transaction.
func Run(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		users := make(map[string]models.User, len(DefaultAccounts))
		for _, a := range DefaultAccounts {
			u, err := ensureUser(tx, a)
			if err != nil {
				return err
			}
			users[a.Username] = u
		}
		admin, editor := users["admin"], users["editor"]

		categories := []models.Category{
			{Name: "新闻动态", Slug: "news", Description: "实验室最新新闻和动态", Color: "#3B82F6"},
			{Name: "研究成果", Slug: "research", Description: "最新研究成果和论文", Color: "#10B981"},
			{Name: "学术活动", Slug: "activities", Description: "学术会议和研讨会", Color: "#F59E0B"},
			{Name: "团队建设", Slug: "team", Description: "团队成员和发展", Color: "#EF4444"},
		}
		for i := range categories {
			if err := tx.Where(models.Category{Name: categories[i].Name}).Attrs(categories[i]).FirstOrCreate(&categories[i]).Error; err != nil {
				return fmt.Errorf("seed category %s: %w", categories[i].Name, err)
			}
		}

		members := []models.TeamMember{
			{Name: "李教授", Title: "实验室主任 / 博士生导师", Bio: "从事果树发育生物学研究20余年，在旱区果树抗逆机制研究方面取得重要成果。", Research: "果树发育生物学、旱区果树抗逆机制", Education: "博士，果树学专业", Email: "li.prof@lab.com", Order: 1, Active: true},
			{Name: "王教授", Title: "副主任 / 硕士生导师", Bio: "专注于果树分子生物学和遗传育种研究，主持多项国家级科研项目。", Research: "分子生物学、遗传育种", Education: "博士，分子生物学专业", Email: "wang.prof@lab.com", Order: 2, Active: true},
			{Name: "张博士", Title: "副研究员", Bio: "研究方向为果树生理生态学，在果树抗旱生理机制研究方面经验丰富。", Research: "果树生理生态学、抗旱生理机制", Education: "博士，生态学专业", Email: "zhang.dr@lab.com", Order: 3, Active: true},
			{Name: "刘博士", Title: "助理研究员", Bio: "从事果树基因组学和生物信息学研究，在果树功能基因研究方面有突出贡献。", Research: "果树基因组学、生物信息学", Education: "博士，基因组学专业", Email: "liu.dr@lab.com", Order: 4, Active: true},
		}
		for i := range members {
			if err := tx.Where(models.TeamMember{Name: members[i].Name, Email: members[i].Email}).Attrs(members[i]).FirstOrCreate(&members[i]).Error; err != nil {
				return fmt.Errorf("seed team member %s: %w", members[i].Name, err)
			}
		}

		publications := []models.Publication{
			{Title: "旱区果树抗旱分子机制研究", Abstract: "本研究深入探讨了旱区果树在干旱胁迫下的分子响应机制，发现了一系列关键抗旱基因...", Authors: "李教授, 王教授, 张博士", Journal: "Plant Physiology", Year: 2024, Volume: "185", Issue: "2", Pages: "345-360", DOI: "10.1104/pp.123.456", AuthorID: admin.ID},
			{Title: "果树基因组学在抗旱育种中的应用", Abstract: "通过基因组学技术，我们成功鉴定了多个与抗旱性相关的QTL位点，为果树抗旱育种提供了新的思路...", Authors: "王教授, 刘博士", Journal: "Nature Plants", Year: 2023, Volume: "9", Issue: "12", Pages: "1567-1582", DOI: "10.1038/s41477-023-01567-8", AuthorID: editor.ID},
		}
		for i := range publications {
			if err := tx.Where(models.Publication{DOI: publications[i].DOI}).Attrs(publications[i]).FirstOrCreate(&publications[i]).Error; err != nil {
				return fmt.Errorf("seed publication %s: %w", publications[i].DOI, err)
			}
		}

		projects := []models.ResearchProject{
			{Title: "旱区果树抗逆分子机制研究", Description: "深入研究旱区果树在干旱、盐碱等逆境条件下的分子响应机制，筛选关键抗逆基因", StartDate: date(2023, 1, 1), EndDate: datePtr(2025, 12, 31), Status: models.ProjectActive, Funding: "国家自然科学基金", Budget: money(1500000), AuthorID: admin.ID},
			{Title: "果树抗旱分子标记开发与应用", Description: "开发与抗旱性状相关的分子标记，应用于果树分子标记辅助育种", StartDate: date(2024, 1, 1), EndDate: datePtr(2026, 12, 31), Status: models.ProjectActive, Funding: "国家重点研发计划", Budget: money(2000000), AuthorID: editor.ID},
			{Title: "旱区果树种质资源评价与创新利用", Description: "系统评价旱区果树种质资源，创制优良新种质，为果树育种提供材料基础", StartDate: date(2022, 1, 1), EndDate: datePtr(2024, 12, 31), Status: models.ProjectCompleted, Funding: "农业部重点课题", Budget: money(800000), AuthorID: admin.ID},
		}
		for i := range projects {
			if err := tx.Where(models.ResearchProject{Title: projects[i].Title}).Attrs(projects[i]).FirstOrCreate(&projects[i]).Error; err != nil {
				return fmt.Errorf("seed project %s: %w", projects[i].Title, err)
			}
		}

		posts := []models.Post{
			{
				Title:       "实验室获得国家自然科学基金重点项目资助",
				Slug:        "nsfc-funding-2024",
				Content:     "<p>我实验室申报的“旱区果树抗逆分子机制研究”项目获得国家自然科学基金重点项目资助，资助金额为150万元。</p><p>该项目为期3年，将深入研究旱区果树在干旱胁迫下的分子响应机制，筛选关键抗逆基因，为旱区果树抗逆育种提供理论基础和技术支持。</p>",
				Excerpt:     "我实验室申报的“旱区果树抗逆分子机制研究”项目获得国家自然科学基金重点项目资助...",
				Published:   true,
				PublishedAt: datePtr(2024, 1, 15),
				AuthorID:    admin.ID,
				CategoryID:  &categories[0].ID,
			},
			{
				Title:       "研究成果在国际顶级期刊发表",
				Slug:        "plant-physiology-publication",
				Content:     "<p>李教授团队在《Plant Physiology》发表重要研究成果，揭示了果树抗旱的新机制。</p><p>该研究通过转录组和代谢组分析，构建了果树抗旱调控网络。</p>",
				Excerpt:     "李教授团队在《Plant Physiology》发表重要研究成果，揭示了果树抗旱的新机制...",
				Published:   true,
				PublishedAt: datePtr(2024, 1, 8),
				AuthorID:    admin.ID,
				CategoryID:  &categories[1].ID,
			},
			{
				Title:       "实验室举办学术研讨会",
				Slug:        "academic-seminar-2023",
				Content:     "<p>成功举办“旱区果树研究前沿”学术研讨会，邀请了国内外知名专家学者参会。</p><p>此次研讨会促进了学术交流，为今后的合作研究奠定了良好基础。</p>",
				Excerpt:     "成功举办“旱区果树研究前沿”学术研讨会，邀请了国内外知名专家学者参会...",
				Published:   true,
				PublishedAt: datePtr(2023, 12, 20),
				AuthorID:    editor.ID,
				CategoryID:  &categories[2].ID,
			},
		}
		for i := range posts {
			if err := tx.Where(models.Post{Slug: posts[i].Slug}).Attrs(posts[i]).FirstOrCreate(&posts[i]).Error; err != nil {
				return fmt.Errorf("seed post %s: %w", posts[i].Slug, err)
			}
		}

		return nil
	})
}

func ensureUser(tx *gorm.DB, a Account) (models.User, error) {
	var u models.User
	err := tx.Where("email = ?", a.Email).First(&u).Error
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return u, fmt.Errorf("lookup user %s: %w", a.Email, err)
	}

	hash, err := utils.HashPassword(a.Password)
	if err != nil {
		return u, err
	}
	u = models.User{
		Username:     a.Username,
		Email:        a.Email,
		PasswordHash: hash,
		Name:         a.Name,
		Role:         a.Role,
		Bio:          a.Bio,
	}
	if err := tx.Create(&u).Error; err != nil {
		return u, fmt.Errorf("create user %s: %w", a.Email, err)
	}
	utils.Sugar.Infof("seeded account %s (%s)", a.Username, a.Role)
	return u, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func money(v float64) *float64 { return &v }
