package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/weiwangfds/pdftoolkit/internal/pdftool"
	"golang.org/x/term"
)

// readPassword 测试时替换，避免读取真实终端
var readPassword = term.ReadPassword

func newToolCmds() []*cobra.Command {
	return []*cobra.Command{
		newMergeCmd(),
		newSplitCmd(),
		newCompressCmd(),
		newRotateCmd(),
		newProtectCmd(),
		newImagesCmd(),
		newExcelCmd(),
	}
}

func newMergeCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "merge <file.pdf>...",
		Short: "按顺序合并多个PDF",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := readInputs(args)
			if err != nil {
				return err
			}
			data, err := pdftool.Merge(cmd.Context(), inputs, progressPrinter(cmd, "merge"))
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, data)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "merged.pdf", "输出文件")
	return cmd
}

func newSplitCmd() *cobra.Command {
	var (
		mode      string
		start     int
		end       int
		outputDir string
	)
	cmd := &cobra.Command{
		Use:   "split <file.pdf>",
		Short: "提取页码范围或逐页拆分",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(args[0])
			if err != nil {
				return err
			}
			opts := pdftool.SplitOptions{Mode: pdftool.SplitMode(mode), StartPage: start, EndPage: end}
			results, err := pdftool.Split(cmd.Context(), in, opts, progressPrinter(cmd, "split"))
			if err != nil {
				return err
			}
			if outputDir == "" {
				outputDir = filepath.Dir(args[0])
			}
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return err
			}
			for _, r := range results {
				if err := writeOutput(cmd, filepath.Join(outputDir, r.FileName), r.Data); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(pdftool.SplitModeRange), "拆分模式：range 或 per-page")
	cmd.Flags().IntVar(&start, "start", 0, "起始页，默认1")
	cmd.Flags().IntVar(&end, "end", 0, "结束页，默认最后一页")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "输出目录，默认与输入文件相同")
	return cmd
}

func newCompressCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "compress <file.pdf>",
		Short: "无损优化PDF体积",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(args[0])
			if err != nil {
				return err
			}
			data, err := pdftool.Compress(cmd.Context(), in, progressPrinter(cmd, "compress"))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d -> %d bytes\n", len(in.Data), len(data))
			return writeOutput(cmd, outputOr(output, args[0], "_compressed.pdf"), data)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "输出文件，默认 <name>_compressed.pdf")
	return cmd
}

func newRotateCmd() *cobra.Command {
	var (
		angle  int
		output string
	)
	cmd := &cobra.Command{
		Use:   "rotate <file.pdf>",
		Short: "顺时针旋转所有页面",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(args[0])
			if err != nil {
				return err
			}
			data, err := pdftool.Rotate(cmd.Context(), in, pdftool.RotationAngle(angle), progressPrinter(cmd, "rotate"))
			if err != nil {
				return err
			}
			return writeOutput(cmd, outputOr(output, args[0], "_rotated.pdf"), data)
		},
	}
	cmd.Flags().IntVar(&angle, "angle", 90, "旋转角度：90、180 或 270")
	cmd.Flags().StringVarP(&output, "output", "o", "", "输出文件，默认 <name>_rotated.pdf")
	return cmd
}

func newProtectCmd() *cobra.Command {
	var (
		mode            string
		password        string
		currentPassword string
		output          string
	)
	cmd := &cobra.Command{
		Use:   "protect <file.pdf>",
		Short: "添加或移除PDF密码",
		Long: `protect 使用AES-256为PDF加密，或用当前密码解除加密。

未通过参数提供密码且标准输入是终端时，会提示输入密码。`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(args[0])
			if err != nil {
				return err
			}
			opts := pdftool.ProtectOptions{Mode: pdftool.ProtectMode(mode), Password: password, CurrentPassword: currentPassword}
			switch opts.Mode {
			case pdftool.ProtectModeAdd:
				if opts.Password == "" {
					if opts.Password, err = promptPassword(cmd, "New password: "); err != nil {
						return err
					}
				}
			case pdftool.ProtectModeRemove:
				if opts.CurrentPassword == "" {
					if opts.CurrentPassword, err = promptPassword(cmd, "Current password: "); err != nil {
						return err
					}
				}
			}

			data, err := pdftool.Protect(cmd.Context(), in, opts, progressPrinter(cmd, "protect"))
			if err != nil {
				return err
			}
			suffix := "_protected.pdf"
			if opts.Mode == pdftool.ProtectModeRemove {
				suffix = "_unlocked.pdf"
			}
			return writeOutput(cmd, outputOr(output, args[0], suffix), data)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(pdftool.ProtectModeAdd), "add 添加密码，remove 移除密码")
	cmd.Flags().StringVar(&password, "password", "", "新密码")
	cmd.Flags().StringVar(&currentPassword, "current-password", "", "当前密码")
	cmd.Flags().StringVarP(&output, "output", "o", "", "输出文件")
	return cmd
}

func newImagesCmd() *cobra.Command {
	var (
		output      string
		orientation string
		pageSize    string
		margin      float64
		fit         string
		align       string
	)
	cmd := &cobra.Command{
		Use:   "images <image>...",
		Short: "把图片按顺序排版为PDF，每张一页",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := readInputs(args)
			if err != nil {
				return err
			}
			opts := pdftool.ImageToPDFOptions{
				Orientation: pdftool.Orientation(orientation),
				PageSize:    pdftool.PageSize(pageSize),
				MarginMM:    &margin,
				FitMode:     pdftool.FitMode(fit),
				Alignment:   pdftool.Alignment(align),
			}
			data, err := pdftool.ImagesToPDF(cmd.Context(), inputs, opts, progressPrinter(cmd, "images"))
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, data)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "images.pdf", "输出文件")
	cmd.Flags().StringVar(&orientation, "orientation", string(pdftool.OrientationPortrait), "portrait 或 landscape")
	cmd.Flags().StringVar(&pageSize, "page-size", string(pdftool.PageSizeA4), "A4 或 Letter")
	cmd.Flags().Float64Var(&margin, "margin", pdftool.DefaultMarginMM, "页边距，单位毫米")
	cmd.Flags().StringVar(&fit, "fit", string(pdftool.FitContain), "contain 或 cover")
	cmd.Flags().StringVar(&align, "align", string(pdftool.AlignCenter), "对齐方式，如 top-left、center、bottom-right")
	return cmd
}

func newExcelCmd() *cobra.Command {
	var (
		sheets      []string
		orientation string
		list        bool
		output      string
	)
	cmd := &cobra.Command{
		Use:   "excel <book.xlsx>",
		Short: "把Excel工作表渲染为PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(args[0])
			if err != nil {
				return err
			}
			if list {
				names, err := pdftool.ListWorksheets(in)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}
			if len(sheets) == 0 {
				if sheets, err = pdftool.ListWorksheets(in); err != nil {
					return err
				}
			}
			data, err := pdftool.ExcelToPDF(cmd.Context(), in, sheets, pdftool.Orientation(orientation), progressPrinter(cmd, "excel"))
			if err != nil {
				return err
			}
			return writeOutput(cmd, outputOr(output, args[0], ".pdf"), data)
		},
	}
	cmd.Flags().StringSliceVarP(&sheets, "sheet", "s", nil, "要转换的工作表，可重复，默认全部")
	cmd.Flags().StringVar(&orientation, "orientation", string(pdftool.OrientationLandscape), "portrait 或 landscape")
	cmd.Flags().BoolVar(&list, "list", false, "只列出工作表名称")
	cmd.Flags().StringVarP(&output, "output", "o", "", "输出文件，默认 <name>.pdf")
	return cmd
}

func readInput(path string) (pdftool.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pdftool.Input{}, err
	}
	return pdftool.Input{Name: filepath.Base(path), Data: data}, nil
}

func readInputs(paths []string) ([]pdftool.Input, error) {
	inputs := make([]pdftool.Input, 0, len(paths))
	for _, p := range paths {
		in, err := readInput(p)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// outputOr 未指定输出时在输入文件旁生成 <name><suffix>
func outputOr(output, input, suffix string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// progressPrinter 标准错误是终端时显示进度
func progressPrinter(cmd *cobra.Command, tool string) pdftool.ProgressFunc {
	w := cmd.ErrOrStderr()
	if !isTerminal(w) {
		return nil
	}
	return func(percent int) {
		fmt.Fprintf(w, "\r%s %3d%%", tool, percent)
		if percent >= 100 {
			fmt.Fprintln(w)
		}
	}
}

func promptPassword(cmd *cobra.Command, prompt string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
