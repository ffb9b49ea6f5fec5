package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"
	"text/tabwriter"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/shulehq/shule-admin/core"
	"github.com/shulehq/shule-admin/core/course"
	"github.com/shulehq/shule-admin/core/group"
	"github.com/shulehq/shule-admin/core/session"
	"github.com/shulehq/shule-admin/forms"
	"github.com/shulehq/shule-admin/services/lms"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	client     *lms.Client
	provider   *session.StaticProvider
	courses    *lms.CourseService
	groups     *lms.GroupService
	validate   *validator.Validate
	translator ut.Translator
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  courses   -email EMAIL [-page N] [-search TEXT] [-level LEVEL] [-division ID]  - list courses")
	fmt.Fprintln(cli.out, "  addcourse -email EMAIL -title TITLE -code CODE [-level LEVEL] [-division ID]   - create a course")
	fmt.Fprintln(cli.out, "  delcourse -email EMAIL -id ID                                                  - delete a course")
	fmt.Fprintln(cli.out, "  groups    -email EMAIL [-page N] [-search TEXT] [-course ID]                   - list groups")
	fmt.Fprintln(cli.out, "  addgroup  -email EMAIL -name NAME -course ID [-capacity N]                     - create a group")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	coursesCmd := flag.NewFlagSet("courses", flag.ExitOnError)
	coursesEmail := coursesCmd.String("email", "", "The admin's email. The password will be prompted next.")
	coursesPage := coursesCmd.Int("page", 1, "Page to fetch.")
	coursesSearch := coursesCmd.String("search", "", "Filter by matching title or code.")
	coursesLevel := coursesCmd.String("level", "", "Filter by level.")
	coursesDivision := coursesCmd.String("division", "", "Filter by division ID.")

	addCourseCmd := flag.NewFlagSet("addcourse", flag.ExitOnError)
	addCourseEmail := addCourseCmd.String("email", "", "The admin's email. The password will be prompted next.")
	addCourseTitle := addCourseCmd.String("title", "", "The course title.")
	addCourseCode := addCourseCmd.String("code", "", "The course code.")
	addCourseLevel := addCourseCmd.String("level", "", "The course level.")
	addCourseDivision := addCourseCmd.String("division", "", "The division ID.")

	delCourseCmd := flag.NewFlagSet("delcourse", flag.ExitOnError)
	delCourseEmail := delCourseCmd.String("email", "", "The admin's email. The password will be prompted next.")
	delCourseID := delCourseCmd.Int("id", 0, "The course ID.")

	groupsCmd := flag.NewFlagSet("groups", flag.ExitOnError)
	groupsEmail := groupsCmd.String("email", "", "The admin's email. The password will be prompted next.")
	groupsPage := groupsCmd.Int("page", 1, "Page to fetch.")
	groupsSearch := groupsCmd.String("search", "", "Filter by matching name.")
	groupsCourse := groupsCmd.String("course", "", "Filter by course ID.")

	addGroupCmd := flag.NewFlagSet("addgroup", flag.ExitOnError)
	addGroupEmail := addGroupCmd.String("email", "", "The admin's email. The password will be prompted next.")
	addGroupName := addGroupCmd.String("name", "", "The group name.")
	addGroupCourse := addGroupCmd.String("course", "", "The course ID the group belongs to.")
	addGroupCapacity := addGroupCmd.Int("capacity", 0, "The group's seat capacity.")

	ctx := context.Background()

	switch args[1] {
	case "courses":
		if err := coursesCmd.Parse(args[2:]); err != nil {
			return err
		}
		if err := cli.login(ctx, *coursesEmail, coursesCmd); err != nil {
			return err
		}
		return cli.listCourses(ctx, *coursesPage, course.QueryFilter{
			Search:     *coursesSearch,
			Level:      *coursesLevel,
			DivisionID: *coursesDivision,
		})
	case "addcourse":
		if err := addCourseCmd.Parse(args[2:]); err != nil {
			return err
		}
		if err := cli.login(ctx, *addCourseEmail, addCourseCmd); err != nil {
			return err
		}
		return cli.addCourse(ctx, *addCourseTitle, *addCourseCode, *addCourseLevel, *addCourseDivision)
	case "delcourse":
		if err := delCourseCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *delCourseID < 1 {
			delCourseCmd.Usage()
			return errHelp
		}
		if err := cli.login(ctx, *delCourseEmail, delCourseCmd); err != nil {
			return err
		}
		if err := cli.courses.Delete(ctx, *delCourseID); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "course %d deleted\n", *delCourseID)
		return nil
	case "groups":
		if err := groupsCmd.Parse(args[2:]); err != nil {
			return err
		}
		if err := cli.login(ctx, *groupsEmail, groupsCmd); err != nil {
			return err
		}
		return cli.listGroups(ctx, *groupsPage, group.QueryFilter{
			Search:   *groupsSearch,
			CourseID: *groupsCourse,
		})
	case "addgroup":
		if err := addGroupCmd.Parse(args[2:]); err != nil {
			return err
		}
		if err := cli.login(ctx, *addGroupEmail, addGroupCmd); err != nil {
			return err
		}
		return cli.addGroup(ctx, *addGroupName, *addGroupCourse, *addGroupCapacity)
	default:
		cli.printUsage()
		return errHelp
	}
}

// login prompts for the password and swaps the resulting session into the
// client's provider; subsequent calls carry its bearer token.
func (cli *commandLine) login(ctx context.Context, email string, cmd *flag.FlagSet) error {
	if email == "" {
		cmd.Usage()
		return errHelp
	}
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Fprintln(cli.out)
	if err != nil {
		return err
	}
	if len(pwd) == 0 {
		cmd.Usage()
		return errHelp
	}

	sess, err := cli.client.Login(ctx, lms.Credentials{Email: email, Password: string(pwd)})
	if err != nil {
		return err
	}
	cli.provider.Session = sess
	return nil
}

func (cli *commandLine) listCourses(ctx context.Context, page int, filter course.QueryFilter) error {
	res, err := cli.courses.List(ctx, page, filter)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCODE\tTITLE\tLEVEL\tPUBLISHED")
	for _, crs := range res.Records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", crs.ID, crs.Code, crs.Title, crs.Level, crs.IsPublished)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "page %d/%d (%d total)\n", res.Pagination.CurrentPage, res.Pagination.LastPage, res.Pagination.Total)
	return nil
}

// addCourse submits through the same form controller the gateway uses, so
// field errors print exactly as the browser would show them.
func (cli *commandLine) addCourse(ctx context.Context, title, code, level, division string) error {
	form := forms.New(cli.courses.CreatePayload, cli.validate, cli.translator,
		forms.NewField("title", "required,max=120"),
		forms.NewField("code", "required,course_code"),
		forms.NewField("level", "omitempty,oneof=beginner intermediate advanced").Opt(),
		forms.NewIDField("division_id", "omitempty,id_ref").Opt(),
	)
	form.Set("title", title)
	form.Set("code", code)
	form.Set("level", level)
	form.Set("division_id", division)

	crs, err := form.Submit(ctx)
	if err != nil {
		return cli.printFormError(form, err)
	}
	fmt.Fprintf(cli.out, "course %d (%s) created\n", crs.ID, crs.Code)
	return nil
}

func (cli *commandLine) listGroups(ctx context.Context, page int, filter group.QueryFilter) error {
	res, err := cli.groups.List(ctx, page, filter)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOURSE\tCAPACITY\tACTIVE")
	for _, grp := range res.Records {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%t\n", grp.ID, grp.Name, grp.CourseID, grp.Capacity, grp.IsActive)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "page %d/%d (%d total)\n", res.Pagination.CurrentPage, res.Pagination.LastPage, res.Pagination.Total)
	return nil
}

func (cli *commandLine) addGroup(ctx context.Context, name, courseID string, capacity int) error {
	ng := group.NewGroup{Name: name, CourseID: courseID, Capacity: capacity}
	if err := cli.validate.Struct(ng); err != nil {
		return err
	}
	grp, err := cli.groups.Create(ctx, ng)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "group %d (%s) created\n", grp.ID, grp.Name)
	return nil
}

// printFormError renders a failed submission: per-field messages when the API
// rejected fields, the single message otherwise.
func (cli *commandLine) printFormError(form interface{ Fields() []*forms.Field; Error() string }, err error) error {
	var vErr *core.ValidationError
	if errors.As(err, &vErr) {
		for _, fld := range form.Fields() {
			for _, msg := range fld.Errors() {
				fmt.Fprintf(cli.out, "  %s: %s\n", fld.Name, msg)
			}
		}
		return errors.New("submission rejected")
	}
	if msg := form.Error(); msg != "" {
		return errors.New(msg)
	}
	return err
}
