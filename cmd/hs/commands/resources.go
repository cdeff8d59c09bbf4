package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/hsclient/internal/constants"
	"github.com/fivetwenty-io/hsclient/pkg/hs"
	"github.com/spf13/cobra"
)

// NewResourcesCommand creates the resources command group.
func NewResourcesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "resources",
		Aliases: []string{"resource", "res"},
		Short:   "Manage resources",
		Long:    "List, inspect, create and share HydroShare resources",
	}

	cmd.AddCommand(newResourcesListCommand())
	cmd.AddCommand(newResourcesGetCommand())
	cmd.AddCommand(newResourcesScimetaCommand())
	cmd.AddCommand(newResourcesCreateCommand())
	cmd.AddCommand(newResourcesDeleteCommand())
	cmd.AddCommand(newResourcesPublicCommand())
	cmd.AddCommand(newResourcesFlagCommand())
	cmd.AddCommand(newResourcesCopyCommand())
	cmd.AddCommand(newResourcesVersionCommand())
	cmd.AddCommand(newResourcesTypesCommand())
	cmd.AddCommand(newResourcesContentTypesCommand())
	cmd.AddCommand(newResourcesMapCommand())

	return cmd
}

type resourcesListFilters struct {
	creator         string
	author          string
	owner           string
	user            string
	group           string
	subject         string
	search          string
	types           []string
	fromDate        string
	toDate          string
	coverage        string
	published       bool
	editPermission  bool
	includeObsolete bool
	limit           int
}

func newResourcesListCommand() *cobra.Command {
	filters := &resourcesListFilters{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resources",
		Long: `List resources visible to the current user.

Dates use YYYY-MM-DD. --coverage takes "north,east" for a point or
"north,south,east,west" for a box.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResourcesList(cmd, filters)
		},
	}

	cmd.Flags().StringVar(&filters.creator, "creator", "", "filter by creator user name")
	cmd.Flags().StringVar(&filters.author, "author", "", "filter by author")
	cmd.Flags().StringVar(&filters.owner, "owner", "", "filter by owner user name")
	cmd.Flags().StringVar(&filters.user, "user", "", "filter by a user with access")
	cmd.Flags().StringVar(&filters.group, "group", "", "filter by group name")
	cmd.Flags().StringVar(&filters.subject, "subject", "", "filter by keyword")
	cmd.Flags().StringVarP(&filters.search, "search", "s", "", "full text search")
	cmd.Flags().StringSliceVar(&filters.types, "type", nil, "filter by resource type (repeatable)")
	cmd.Flags().StringVar(&filters.fromDate, "from", "", "created on or after this date")
	cmd.Flags().StringVar(&filters.toDate, "to", "", "created before this date")
	cmd.Flags().StringVar(&filters.coverage, "coverage", "", "spatial coverage filter")
	cmd.Flags().BoolVar(&filters.published, "published", false, "only published resources")
	cmd.Flags().BoolVar(&filters.editPermission, "edit-permission", false, "only resources the user can edit")
	cmd.Flags().BoolVar(&filters.includeObsolete, "include-obsolete", false, "include replaced versions")
	cmd.Flags().IntVarP(&filters.limit, "limit", "n", 0, "stop after this many resources (0 for all)")

	return cmd
}

func (f *resourcesListFilters) params() (*hs.ResourceListParams, error) {
	params := hs.NewResourceListParams().
		WithCreator(f.creator).
		WithOwner(f.owner).
		WithUser(f.user).
		WithGroup(f.group).
		WithSubject(f.subject).
		WithFullTextSearch(f.search).
		WithTypes(f.types...)

	params.Author = f.author
	params.Published = f.published
	params.EditPermission = f.editPermission
	params.IncludeObsolete = f.includeObsolete

	from, err := parseDate(f.fromDate)
	if err != nil {
		return nil, err
	}

	to, err := parseDate(f.toDate)
	if err != nil {
		return nil, err
	}

	params.WithDateRange(from, to)

	if f.coverage != "" {
		coverage, err := parseCoverage(f.coverage)
		if err != nil {
			return nil, err
		}

		params.WithCoverage(coverage)
	}

	return params, nil
}

func parseCoverage(value string) (hs.SpatialCoverage, error) {
	parts := strings.Split(value, ",")
	coords := make([]float64, 0, len(parts))

	for _, part := range parts {
		coord, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return hs.SpatialCoverage{}, fmt.Errorf("%w: %s", constants.ErrInvalidCoordinates, value)
		}

		coords = append(coords, coord)
	}

	switch len(coords) {
	case 2: //nolint:mnd // north,east
		return hs.SpatialCoverage{Type: hs.CoverageTypePoint, North: coords[0], East: coords[1]}, nil
	case 4: //nolint:mnd // north,south,east,west
		return hs.SpatialCoverage{
			Type:  hs.CoverageTypeBox,
			North: coords[0],
			South: coords[1],
			East:  coords[2],
			West:  coords[3],
		}, nil
	default:
		return hs.SpatialCoverage{}, fmt.Errorf("%w: %s", constants.ErrInvalidCoordinates, value)
	}
}

func runResourcesList(cmd *cobra.Command, filters *resourcesListFilters) error {
	params, err := filters.params()
	if err != nil {
		return err
	}

	client, err := createClient(cmd)
	if err != nil {
		return err
	}

	resources := make([]hs.Resource, 0)

	for resource, err := range client.Resources().List(commandContext(cmd), params).Seq() {
		if err != nil {
			return fmt.Errorf("failed to list resources: %w", err)
		}

		resources = append(resources, resource)

		if filters.limit > 0 && len(resources) >= filters.limit {
			break
		}
	}

	return render(cmd, resources, func(out io.Writer) error {
		if len(resources) == 0 {
			_, err := fmt.Fprintln(out, "No resources found")

			return err
		}

		rows := make([][]string, 0, len(resources))
		for _, r := range resources {
			rows = append(rows, []string{
				r.ResourceID,
				r.ResourceTitle,
				r.ResourceType,
				r.Creator,
				yesNo(r.Public),
				r.DateLastUpdated,
			})
		}

		return renderList(out, []string{"ID", "Title", "Type", "Creator", "Public", "Updated"}, rows)
	})
}

func newResourcesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get PID",
		Short: "Show resource system metadata",
		Long:  "Display the system metadata of a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			resource, err := client.Resources().GetSystemMetadata(commandContext(cmd), args[0])
			if err != nil {
				return fmt.Errorf("failed to get resource: %w", err)
			}

			return render(cmd, resource, func(out io.Writer) error {
				return renderProperties(out, [][]string{
					{"ID", resource.ResourceID},
					{"Title", resource.ResourceTitle},
					{"Type", resource.ResourceType},
					{"Creator", resource.Creator},
					{"Authors", strings.Join(resource.Authors, ", ")},
					{"Created", resource.DateCreated},
					{"Updated", resource.DateLastUpdated},
					{"Public", strconv.FormatBool(resource.Public)},
					{"Discoverable", strconv.FormatBool(resource.Discoverable)},
					{"Shareable", strconv.FormatBool(resource.Shareable)},
					{"Published", strconv.FormatBool(resource.Published)},
					{"DOI", orNotAvailable(resource.DOI)},
					{"URL", resource.ResourceURL},
					{"Bag", resource.BagURL},
				})
			})
		},
	}
}

func newResourcesScimetaCommand() *cobra.Command {
	var rdf bool

	cmd := &cobra.Command{
		Use:   "scimeta PID",
		Short: "Show science metadata",
		Long:  "Display the science metadata of a resource, or its RDF/XML document with --rdf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)

			if rdf {
				doc, err := client.Resources().GetScienceMetadataRDF(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to get science metadata: %w", err)
				}

				_, err = cmd.OutOrStdout().Write(doc)

				return err
			}

			metadata, err := client.Resources().GetScienceMetadata(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get science metadata: %w", err)
			}

			return render(cmd, metadata, func(out io.Writer) error {
				creators := make([]string, 0, len(metadata.Creators))
				for _, c := range metadata.Creators {
					creators = append(creators, orNotAvailable(c.Name))
				}

				return renderProperties(out, [][]string{
					{"Title", metadata.Title},
					{"Abstract", metadata.Description},
					{"Keywords", strings.Join(metadata.Keywords(), ", ")},
					{"Creators", strings.Join(creators, "; ")},
					{"Language", metadata.Language},
					{"Type", metadata.Type},
				})
			})
		},
	}

	cmd.Flags().BoolVar(&rdf, "rdf", false, "print the RDF/XML document")

	return cmd
}

type resourcesCreateOptions struct {
	resourceType string
	title        string
	abstract     string
	keywords     []string
	editUsers    []string
	viewUsers    []string
	extra        map[string]string
	file         string
}

func newResourcesCreateCommand() *cobra.Command {
	opts := &resourcesCreateOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a resource",
		Long:  "Create a new resource, optionally with an initial file",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			request := &hs.ResourceCreateRequest{
				ResourceType:  opts.resourceType,
				Title:         opts.title,
				Abstract:      opts.abstract,
				Keywords:      opts.keywords,
				EditUsers:     opts.editUsers,
				ViewUsers:     opts.viewUsers,
				ExtraMetadata: opts.extra,
			}

			if opts.file != "" {
				request.File = &hs.FileUpload{Path: opts.file}
			}

			pid, err := client.Resources().Create(commandContext(cmd), request)
			if err != nil {
				return fmt.Errorf("failed to create resource: %w", err)
			}

			return printMessage(cmd, map[string]string{"resource_id": pid}, "Created resource %s", pid)
		},
	}

	cmd.Flags().StringVarP(&opts.resourceType, "type", "t", "CompositeResource", "resource type")
	cmd.Flags().StringVar(&opts.title, "title", "", "resource title (required)")
	cmd.Flags().StringVar(&opts.abstract, "abstract", "", "resource abstract")
	cmd.Flags().StringSliceVarP(&opts.keywords, "keyword", "k", nil, "keyword (repeatable)")
	cmd.Flags().StringSliceVar(&opts.editUsers, "edit-user", nil, "user granted edit access (repeatable)")
	cmd.Flags().StringSliceVar(&opts.viewUsers, "view-user", nil, "user granted view access (repeatable)")
	cmd.Flags().StringToStringVar(&opts.extra, "extra", nil, "extended metadata key=value (repeatable)")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "file to upload with the resource")

	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newResourcesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete PID",
		Short: "Delete a resource",
		Long:  "Permanently delete a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			pid, err := client.Resources().Delete(commandContext(cmd), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete resource: %w", err)
			}

			return printMessage(cmd, map[string]string{"resource_id": pid}, "Deleted resource %s", pid)
		},
	}
}

func newResourcesPublicCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "public PID true|false",
		Short: "Make a resource public or private",
		Long:  "Set the public access rule of a resource",
		Args:  cobra.ExactArgs(2), //nolint:mnd // pid and value
		RunE: func(cmd *cobra.Command, args []string) error {
			public, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("%w: %q is not a boolean", constants.ErrInvalidFlag, args[1])
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			pid, err := client.Resources().SetAccessRules(commandContext(cmd), args[0], public)
			if err != nil {
				return fmt.Errorf("failed to set access rules: %w", err)
			}

			state := "private"
			if public {
				state = "public"
			}

			return printMessage(cmd, map[string]string{"resource_id": pid}, "Resource %s is now %s", pid, state)
		},
	}
}

func newResourcesFlagCommand() *cobra.Command {
	names := make([]string, 0, len(hs.ResourceFlags))
	for _, f := range hs.ResourceFlags {
		names = append(names, string(f))
	}

	return &cobra.Command{
		Use:       "flag PID FLAG",
		Short:     "Set a sharing flag",
		Long:      "Set a sharing flag on a resource. Flags: " + strings.Join(names, ", "),
		Args:      cobra.ExactArgs(2), //nolint:mnd // pid and flag
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			flag := hs.ResourceFlag(args[1])
			if !flag.Valid() {
				return fmt.Errorf("%w: unknown flag %q", constants.ErrInvalidFlag, args[1])
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			err = client.Resources().SetFlag(commandContext(cmd), args[0], flag)
			if err != nil {
				return fmt.Errorf("failed to set flag: %w", err)
			}

			return printMessage(cmd, map[string]string{"resource_id": args[0], "flag": string(flag)},
				"Applied %s to %s", flag, args[0])
		},
	}
}

func newResourcesCopyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "copy PID",
		Short: "Copy a resource",
		Long:  "Create a copy of a resource owned by the current user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			pid, err := client.Resources().Copy(commandContext(cmd), args[0])
			if err != nil {
				return fmt.Errorf("failed to copy resource: %w", err)
			}

			return printMessage(cmd, map[string]string{"resource_id": pid}, "Created copy %s", pid)
		},
	}
}

func newResourcesVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version PID",
		Short: "Create a new version of a resource",
		Long:  "Create a new version of a resource; the original becomes obsolete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			pid, err := client.Resources().Version(commandContext(cmd), args[0])
			if err != nil {
				return fmt.Errorf("failed to version resource: %w", err)
			}

			return printMessage(cmd, map[string]string{"resource_id": pid}, "Created version %s", pid)
		},
	}
}

func newResourcesTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List resource types",
		Long:  "List the resource types the server accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			types, err := client.Resources().GetTypes(commandContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to list resource types: %w", err)
			}

			return renderNames(cmd, "Resource Type", types)
		},
	}
}

func newResourcesContentTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "content-types",
		Short: "List content types",
		Long:  "List the content types the server knows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			types, err := client.Resources().GetContentTypes(commandContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to list content types: %w", err)
			}

			return renderNames(cmd, "Content Type", types)
		},
	}
}

func newResourcesMapCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "map PID",
		Short: "Print the resource map",
		Long:  "Print the OAI-ORE resource map document of a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}

			doc, err := client.Resources().GetResourceMap(commandContext(cmd), args[0])
			if err != nil {
				return fmt.Errorf("failed to get resource map: %w", err)
			}

			_, err = cmd.OutOrStdout().Write(doc)

			return err
		},
	}
}

func renderNames(cmd *cobra.Command, header string, names []string) error {
	return render(cmd, names, func(out io.Writer) error {
		rows := make([][]string, 0, len(names))
		for _, n := range names {
			rows = append(rows, []string{n})
		}

		return renderList(out, []string{header}, rows)
	})
}
